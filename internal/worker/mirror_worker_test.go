package worker

import (
	"context"
	"errors"
	"testing"

	"expensemcp/internal/amqp"
	"expensemcp/internal/core"
)

type fakeWriter struct {
	got []core.Expense
	err error
}

func (f *fakeWriter) Append(_ context.Context, e core.Expense) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.got = append(f.got, e)
	return "Expenses!A2:D2", nil
}

func TestMirrorWorker_HandleRecorded(t *testing.T) {
	writer := &fakeWriter{}
	w := NewMirrorWorker(writer, nil)

	msg := amqp.NewExpenseRecordedMessage(core.Expense{ID: 3, Category: "Travel", Amount: 45, Description: "Taxi"})
	if err := w.HandleRecorded(context.Background(), msg); err != nil {
		t.Fatalf("HandleRecorded: %v", err)
	}

	want := core.Expense{ID: 3, Category: "Travel", Amount: 45, Description: "Taxi"}
	if len(writer.got) != 1 || writer.got[0] != want {
		t.Fatalf("mirrored %+v, want %+v", writer.got, want)
	}
}

func TestMirrorWorker_WriterErrorIsReturned(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewMirrorWorker(&fakeWriter{err: boom}, nil)

	err := w.HandleRecorded(context.Background(), amqp.NewExpenseRecordedMessage(core.Expense{ID: 1}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestMirrorWorker_NilMessage(t *testing.T) {
	w := NewMirrorWorker(&fakeWriter{}, nil)
	if err := w.HandleRecorded(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil message")
	}
}

// The worker's method must plug straight into the AMQP consumer.
var _ amqp.Handler = (*MirrorWorker)(nil).HandleRecorded

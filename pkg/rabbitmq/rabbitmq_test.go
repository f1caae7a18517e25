package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an amqp.Acknowledger that remembers the last decision.
type recorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (r *recorder) Ack(tag uint64, multiple bool) error {
	r.acked = true
	return nil
}

func (r *recorder) Nack(tag uint64, multiple, requeue bool) error {
	r.nacked = true
	r.requeue = requeue
	return nil
}

func (r *recorder) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func delivery(t *testing.T, ack *recorder, redelivered bool) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(ConfirmationMessage{Email: "a@example.com", Username: "alice", Code: "abc"})
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body, Redelivered: redelivered}
}

func TestHandleDelivery_Acks(t *testing.T) {
	ack := &recorder{}
	var got ConfirmationMessage
	handleDelivery(delivery(t, ack, false), func(m ConfirmationMessage) error {
		got = m
		return nil
	})

	assert.True(t, ack.acked)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "abc", got.Code)
}

func TestHandleDelivery_RequeuesOnce(t *testing.T) {
	failing := func(ConfirmationMessage) error { return errors.New("smtp down") }

	first := &recorder{}
	handleDelivery(delivery(t, first, false), failing)
	assert.True(t, first.nacked)
	assert.True(t, first.requeue)

	second := &recorder{}
	handleDelivery(delivery(t, second, true), failing)
	assert.True(t, second.nacked)
	assert.False(t, second.requeue)
}

func TestHandleDelivery_DropsMalformed(t *testing.T) {
	ack := &recorder{}
	called := false
	handleDelivery(amqp.Delivery{Acknowledger: ack, Body: []byte("{")}, func(ConfirmationMessage) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"ledgerpass/internal/audit"
	"ledgerpass/pkg/testutil/containers"
)

func TestSinkProducesKeyedRecords(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sink, err := NewSink([]string{rp.Broker}, "ledgerpass.audit")
	require.NoError(t, err)
	defer sink.Close()
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))
	// second call hits TopicAlreadyExists
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))

	event := audit.Event{
		Height:  3,
		Actor:   "wallet_1",
		Subject: "passport:US123456789",
		Action:  audit.ActionPassportIssued,
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics("ledgerpass.audit"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, "passport:US123456789", string(records[0].Key))
	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, audit.ActionPassportIssued, got.Action)
	assert.Equal(t, event.Actor, got.Actor)
}

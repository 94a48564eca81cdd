package output

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/stretchr/testify/assert"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

type mockPulsarProducer struct {
	sentMessages [][]byte
	returnError  bool
}

func (m *mockPulsarProducer) Send(ctx context.Context, msg *pulsar.ProducerMessage) (pulsar.MessageID, error) {
	if m.returnError {
		return nil, errors.New("mock send error")
	}
	m.sentMessages = append(m.sentMessages, msg.Payload)
	return pulsar.EarliestMessageID(), nil
}

func (m *mockPulsarProducer) SendAsync(ctx context.Context, msg *pulsar.ProducerMessage, cb func(pulsar.MessageID, *pulsar.ProducerMessage, error)) {
	if m.returnError {
		cb(nil, msg, errors.New("mock send error"))
	} else {
		m.sentMessages = append(m.sentMessages, msg.Payload)
		cb(pulsar.EarliestMessageID(), msg, nil)
	}
}

func (m *mockPulsarProducer) Close()                {}
func (m *mockPulsarProducer) Topic() string         { return "mock-topic" }
func (m *mockPulsarProducer) Name() string          { return "mock-producer" }
func (m *mockPulsarProducer) LastSequenceID() int64 { return 0 }
func (m *mockPulsarProducer) Flush() error          { return nil }
func (m *mockPulsarProducer) FlushWithCtx(ctx context.Context) error {
	return nil
}

// ==== Mock Client ====

type mockClient struct {
	producer pulsar.Producer
}

func (m *mockClient) CreateProducer(opts pulsar.ProducerOptions) (pulsar.Producer, error) {
	return m.producer, nil
}

func (m *mockClient) Close() {}

func (m *mockClient) Subscribe(pulsar.ConsumerOptions) (pulsar.Consumer, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) CreateReader(pulsar.ReaderOptions) (pulsar.Reader, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) TopicPartitions(topic string) ([]string, error) {
	return []string{topic}, nil
}

func (m *mockClient) CreateTableView(opts pulsar.TableViewOptions) (pulsar.TableView, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) NewTransaction(duration time.Duration) (pulsar.Transaction, error) {
	return nil, errors.New("not implemented")
}

// ==== Tests ====
func TestPulsarOutput_Send(t *testing.T) {
	mp := &mockPulsarProducer{}
	mc := &mockClient{producer: mp}

	pout := &PulsarOutput{
		cfg: PulsarConfig{
			URL:   "pulsar://localhost:6650",
			Topic: "test-topic",
		},
		client:   mc,
		producer: mp,
	}

	query := types.Query{
		Sources:             []types.Source{{Database: "testdb", Table: "users"}},
		Timestamp:           1700000000,
		Type:                types.QueryTypeUpdate,
		Query:               "UPDATE users SET name='Bob' WHERE id=1",
		QueryStart:          36,
		QueryEnd:            74,
		EventStart:          4,
		EventLength:         78,
		RelatedEventsEndPos: 120,
	}

	err := pout.Send(context.Background(), query)
	assert.NoError(t, err)
	assert.Len(t, mp.sentMessages, 1)

	var decoded types.Query
	err = json.Unmarshal(mp.sentMessages[0], &decoded)
	assert.NoError(t, err)
	assert.Equal(t, query.Sources, decoded.Sources)
	assert.Equal(t, query.Query, decoded.Query)
}

func TestPulsarOutput_SendError(t *testing.T) {
	mp := &mockPulsarProducer{returnError: true}
	mc := &mockClient{producer: mp}

	pout := &PulsarOutput{
		cfg:      PulsarConfig{},
		client:   mc,
		producer: mp,
	}

	err := pout.Send(context.Background(), types.Query{Type: types.QueryTypeInsert})
	assert.Error(t, err)
}

func TestPulsarOutput_Close(t *testing.T) {
	mp := &mockPulsarProducer{}
	mc := &mockClient{producer: mp}

	pout := &PulsarOutput{
		cfg:      PulsarConfig{},
		client:   mc,
		producer: mp,
	}

	assert.NotPanics(t, func() {
		err := pout.Close()
		assert.NoError(t, err)
	})
}

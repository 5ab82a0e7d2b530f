package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/linky-integration/internal/pkg/config"
	"github.com/anicoll/linky-integration/internal/pkg/model"
)

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	paho_mqtt.Client

	mu           sync.Mutex
	messages     []published
	publishErr   error
	connectErr   error
	disconnected bool
}

func (f *fakeClient) Connect() paho_mqtt.Token {
	return &doneToken{err: f.connectErr}
}

func (f *fakeClient) Disconnect(uint) {
	f.disconnected = true
}

func (f *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) paho_mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return &doneToken{err: f.publishErr}
}

func (f *fakeClient) byTopic(topic string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, m := range f.messages {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func testService(client *fakeClient) *service {
	return New(client, &config.MqttConfig{
		DiscoveryPrefix: "homeassistant",
		BaseTopic:       "linky",
		QoS:             1,
		PublishTimeout:  time.Second,
	}, "Entry-1")
}

func relayEntity() *model.EntityDescription {
	return &model.EntityDescription{
		UniqueID: "linkytic_entry_RELAIS_1",
		ObjectID: "relais_1",
		Name:     "Relais 1",
		Platform: model.PlatformBinarySensor,
		Icon:     "mdi:electric-switch",
	}
}

func TestConnect(t *testing.T) {
	assert.NoError(t, testService(&fakeClient{}).Connect())
	boom := errors.New("refused")
	assert.ErrorIs(t, testService(&fakeClient{connectErr: boom}).Connect(), boom)
}

func TestRegisterEntity_PublishesDiscoveryOnce(t *testing.T) {
	client := &fakeClient{}
	s := testService(client)
	device := &model.Device{ID: "entry", Name: "Linky", Manufacturer: "ITRON", Model: "Linky", SerialNumber: "061876097289"}

	require.NoError(t, s.RegisterEntity(device, relayEntity()))
	require.NoError(t, s.RegisterEntity(device, relayEntity()))

	msgs := client.byTopic("homeassistant/binary_sensor/entry_1/relais_1/config")
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].retained)

	var msg model.RegisterMessage
	require.NoError(t, json.Unmarshal(msgs[0].payload, &msg))
	assert.Equal(t, "linky/entry_1/relais_1", msg.Tilda)
	assert.Equal(t, "linkytic_entry_RELAIS_1", msg.ID)
	assert.Equal(t, "~/availability", msg.AvailabilityTopic)
	assert.Equal(t, model.PayloadOn, msg.PayloadOn)
	assert.Equal(t, []string{"linkytic_entry"}, msg.Device.Identifiers)
	assert.Equal(t, "ITRON", msg.Device.Manufacturer)
}

func TestRegisterEntity_SensorHasNoPayloads(t *testing.T) {
	client := &fakeClient{}
	s := testService(client)
	entity := &model.EntityDescription{
		UniqueID:    "linkytic_entry_BASE",
		ObjectID:    "index_option_base",
		Platform:    model.PlatformSensor,
		DeviceClass: model.DeviceClassEnergy,
		StateClass:  model.StateClassTotalIncreasing,
		Unit:        model.NumericUnitWattHour,
	}
	require.NoError(t, s.RegisterEntity(&model.Device{ID: "entry"}, entity))

	msgs := client.byTopic("homeassistant/sensor/entry_1/index_option_base/config")
	require.Len(t, msgs, 1)
	raw := map[string]any{}
	require.NoError(t, json.Unmarshal(msgs[0].payload, &raw))
	assert.NotContains(t, raw, "payload_on")
	assert.Equal(t, "Wh", raw["unit_of_measurement"])
	assert.Equal(t, "total_increasing", raw["state_class"])
}

func TestWrite(t *testing.T) {
	client := &fakeClient{}
	s := testService(client)
	on := model.PayloadOn

	err := s.Write(context.Background(), []model.EntityState{
		{ObjectID: "relais_1", Value: &on, Icon: "mdi:electric-switch-closed", Available: true},
		{ObjectID: "relais_2", Available: false},
	})
	require.NoError(t, err)

	avail := client.byTopic("linky/entry_1/relais_1/availability")
	require.Len(t, avail, 1)
	assert.Equal(t, "online", string(avail[0].payload))
	state := client.byTopic("linky/entry_1/relais_1/state")
	require.Len(t, state, 1)
	assert.JSONEq(t, `{"value":"ON","icon":"mdi:electric-switch-closed"}`, string(state[0].payload))

	assert.Equal(t, "offline", string(client.byTopic("linky/entry_1/relais_2/availability")[0].payload))
	assert.Empty(t, client.byTopic("linky/entry_1/relais_2/state"))
}

func TestWrite_PublishError(t *testing.T) {
	boom := errors.New("broker gone")
	s := testService(&fakeClient{publishErr: boom})
	err := s.Write(context.Background(), []model.EntityState{{ObjectID: "x"}})
	assert.ErrorIs(t, err, boom)
}

func TestClose_MarksEntitiesOffline(t *testing.T) {
	client := &fakeClient{}
	s := testService(client)
	require.NoError(t, s.RegisterEntity(&model.Device{ID: "entry"}, relayEntity()))

	require.NoError(t, s.Close())
	msgs := client.byTopic("linky/entry_1/relais_1/availability")
	require.Len(t, msgs, 1)
	assert.Equal(t, "offline", string(msgs[0].payload))
	assert.True(t, client.disconnected)
}

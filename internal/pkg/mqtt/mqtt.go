package mqtt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/config"
)

var ErrConnectTimeout = errors.New("unable to connect in time")

type service struct {
	client paho_mqtt.Client
	cfg    *config.MqttConfig
	node   string
	logger *zap.Logger

	mu                 sync.Mutex
	configuredEntities map[string]string // unique id -> base topic
}

// NewClient builds a paho client from cfg.
func NewClient(cfg *config.MqttConfig) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetOrderMatters(false)
	return paho_mqtt.NewClient(opts)
}

// New returns the Home Assistant discovery publisher for the meter identified by node.
func New(client paho_mqtt.Client, cfg *config.MqttConfig, node string) *service {
	return &service{
		client:             client,
		cfg:                cfg,
		node:               strings.Replace(slug.Make(node), "-", "_", -1),
		logger:             zap.L(),
		configuredEntities: make(map[string]string),
	}
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(time.Second * 5)
	if res {
		return token.Error()
	}
	if err := token.Error(); err != nil {
		return err
	}
	return ErrConnectTimeout
}

// Close marks every registered entity offline and disconnects.
func (s *service) Close() error {
	s.mu.Lock()
	topics := make([]string, 0, len(s.configuredEntities))
	for _, base := range s.configuredEntities {
		topics = append(topics, base)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PublishTimeout)
	defer cancel()
	var errs []error
	for _, base := range topics {
		errs = append(errs, s.publish(ctx, availabilityTopic(base), true, offlinePayload))
	}
	s.client.Disconnect(250)
	return errors.Join(errs...)
}

func (s *service) qos() byte {
	if s.cfg.QoS < 0 || s.cfg.QoS > 2 {
		return 1
	}
	return byte(s.cfg.QoS)
}

func (s *service) publish(ctx context.Context, topic string, retained bool, payload []byte) error {
	token := s.client.Publish(topic, s.qos(), retained, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.PublishTimeout):
		s.logger.Warn("publish timed out", zap.String("topic", topic))
		return nil
	}
}

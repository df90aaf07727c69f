package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/newsnet/backend/internal/config"
	"github.com/newsnet/backend/internal/entity"
	"go.uber.org/zap"
)

const (
	NewsCreatedSubject = "news.created"
	NewsUpdatedSubject = "news.updated"
	NewsDeletedSubject = "news.deleted"
)

// Publisher announces article lifecycle changes so downstream consumers
// (feeds, search indexers) can react without polling the database.
type Publisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

type deletedEventPayload struct {
	ID string `json:"id"`
}

func NewNATSPublisher(cfg *config.NATSConfig, logger *zap.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.ConnectTimeout),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))

	return &Publisher{nc: nc, logger: logger.Named("NATSPublisher")}, nil
}

func (p *Publisher) PublishNewsCreated(news *entity.News) error {
	return p.publish(NewsCreatedSubject, news, news.ID)
}

func (p *Publisher) PublishNewsUpdated(news *entity.News) error {
	return p.publish(NewsUpdatedSubject, news, news.ID)
}

func (p *Publisher) PublishNewsDeleted(newsID string) error {
	return p.publish(NewsDeletedSubject, deletedEventPayload{ID: newsID}, newsID)
}

func (p *Publisher) publish(subject string, payload any, newsID string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", subject, err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish NATS message",
			zap.String("subject", subject),
			zap.String("news_id", newsID),
			zap.Error(err))
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}
	p.logger.Debug("Published NATS message", zap.String("subject", subject), zap.String("news_id", newsID))
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			p.logger.Error("Error draining NATS connection", zap.Error(err))
		}
		p.nc.Close()
	}
}

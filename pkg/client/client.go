package client

import (
	"time"

	"voltslot/pkg/logger"
)

// Client bundles the external connections the service holds open.
type Client struct {
	Mongo *MongoClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	c.Mongo = NewMongoClient(log, mongoURI, connTimeout)
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo != nil {
		c.Mongo.Disconnect(log)
	}
}

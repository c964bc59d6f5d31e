package rabbitmq_producer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_common"
)

func TestPublisherConfigValidate(t *testing.T) {
	base := rabbitmq_common.Config{URL: "amqp://localhost:5672/"}

	assert.NoError(t, PublisherConfig{Config: base}.Validate())
	assert.NoError(t, PublisherConfig{Config: base, ExchangeName: "events", ExchangeType: "topic", DeclareExchangeIfMissing: true}.Validate())
	assert.NoError(t, PublisherConfig{Config: base, ExchangeName: "events"}.Validate())

	assert.Error(t, PublisherConfig{}.Validate())
	assert.Error(t, PublisherConfig{Config: base, ExchangeName: "events", DeclareExchangeIfMissing: true}.Validate())
	assert.Error(t, PublisherConfig{Config: base, ExchangeType: "topic", DeclareExchangeIfMissing: true}.Validate())
}

package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type named string

func (n named) EventName() string { return string(n) }

type recordingPublisher struct {
	names []string
	fail  string
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	if e.EventName() == p.fail {
		return errors.New("publish " + p.fail)
	}
	p.names = append(p.names, e.EventName())
	return nil
}

func TestPublishAll_PublishesInOrderAndJoinsErrors(t *testing.T) {
	p := &recordingPublisher{fail: "b"}
	err := PublishAll(context.Background(), p, named("a"), nil, named("b"), named("c"))

	assert.Equal(t, []string{"a", "c"}, p.names)
	assert.ErrorContains(t, err, "publish b")
}

func TestPublishAll_NilPublisher(t *testing.T) {
	assert.NoError(t, PublishAll(context.Background(), nil, named("a")))
}

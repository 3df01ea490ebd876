package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/calemaley/airbnb/internal/app/commands"
)

var errBadMessage = errors.New("middleware test: bad message")

type selfCheckedCommand struct {
	fail bool
}

func (selfCheckedCommand) Key() string { return "test.selfchecked" }

func (c selfCheckedCommand) Validate() error {
	if c.fail {
		return errBadMessage
	}
	return nil
}

type plainCommand struct{}

func (plainCommand) Key() string { return "test.plain" }

func TestValidationBlocksInvalidCommand(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, selfCheckedCommand{}.Key(),
		commands.HandlerFunc[selfCheckedCommand, string](func(ctx context.Context, cmd selfCheckedCommand) (string, error) {
			return "handled", nil
		}))

	chained := ChainCommands(bus, Validation(SelfValidator{}))

	if _, err := chained.Dispatch(context.Background(), selfCheckedCommand{fail: true}); !errors.Is(err, errBadMessage) {
		t.Fatalf("Dispatch error = %v, want %v", err, errBadMessage)
	}

	res, err := chained.Dispatch(context.Background(), selfCheckedCommand{})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if res != "handled" {
		t.Fatalf("Dispatch result = %v, want handled", res)
	}
}

func TestValidationSkipsMessagesWithoutValidate(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, plainCommand{}.Key(),
		commands.HandlerFunc[plainCommand, string](func(ctx context.Context, cmd plainCommand) (string, error) {
			return "ok", nil
		}))

	chained := ChainCommands(bus, Validation(SelfValidator{}))

	if _, err := chained.Dispatch(context.Background(), plainCommand{}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
}

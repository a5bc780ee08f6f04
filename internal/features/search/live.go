package search

import (
	"context"
	"sync"
	"time"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/config"
	"go-bizops/internal/features/schema"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// liveCommand is one client edit to a live search session.
type liveCommand struct {
	Action    string           `json:"action"`
	Text      string           `json:"text,omitempty"`
	Condition *FilterCondition `json:"condition,omitempty"`
	Index     int              `json:"index,omitempty"`
	Patch     *ConditionPatch  `json:"patch,omitempty"`
	Field     string           `json:"field,omitempty"`
	Order     string           `json:"order,omitempty"`
	Page      int              `json:"page,omitempty"`
}

// LiveController serves search over a websocket. Each connection owns one
// Session, so rapid edits debounce server-side and the client only ever
// sees results in dispatch order.
type LiveController struct {
	executor Executor
	registry *schema.Registry
	config   *config.Config
	log      *zap.Logger
}

func NewLiveController(executor Executor, registry *schema.Registry, config *config.Config, log *zap.Logger) *LiveController {
	return &LiveController{
		executor: executor,
		registry: registry,
		config:   config,
		log:      log,
	}
}

// Handle runs the command loop for one connection. Result and error frames
// are pushed as they settle; a validation failure on a command produces an
// error frame but leaves the session running.
func (ctrl *LiveController) Handle(c *websocket.Conn) {
	moduleName := c.Params("module")

	var writeMu sync.Mutex
	send := func(v any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.WriteJSON(v); err != nil {
			ctrl.log.Debug("live search write failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := NewSession(ctx, moduleName, ctrl.executor, ctrl.registry, ctrl.log, SessionOptions{
		Debounce: time.Duration(ctrl.config.DebounceMs) * time.Millisecond,
		OnResults: func(r *SearchResult) {
			send(fiber.Map{"type": "results", "result": r})
		},
		OnError: func(err error) {
			send(fiber.Map{"type": "error", "error": err.Error()})
		},
	})
	if err != nil {
		send(fiber.Map{"type": "error", "error": err.Error()})
		c.Close()
		return
	}
	defer session.Close()

	for {
		var cmd liveCommand
		if err := c.ReadJSON(&cmd); err != nil {
			break
		}
		if err := ctrl.apply(session, cmd); err != nil {
			send(fiber.Map{"type": "error", "error": err.Error()})
		}
	}
}

func (ctrl *LiveController) apply(s *Session, cmd liveCommand) error {
	switch cmd.Action {
	case "set_text":
		s.SetSearchText(cmd.Text)
		return nil
	case "add_condition":
		if cmd.Condition == nil {
			return apperr.Validation("add_condition requires a condition")
		}
		return s.AddFilterCondition(*cmd.Condition)
	case "remove_condition":
		return s.RemoveFilterCondition(cmd.Index)
	case "update_condition":
		if cmd.Patch == nil {
			return apperr.Validation("update_condition requires a patch")
		}
		return s.UpdateFilterCondition(cmd.Index, *cmd.Patch)
	case "clear_filters":
		s.ClearFilters()
		return nil
	case "set_sort":
		return s.SetSort(cmd.Field, cmd.Order)
	case "set_page":
		return s.SetPage(cmd.Page)
	case "clear":
		s.ClearSearch()
		return nil
	case "refetch":
		s.Refetch()
		return nil
	default:
		return apperr.Validation("unknown live search action %q", cmd.Action)
	}
}

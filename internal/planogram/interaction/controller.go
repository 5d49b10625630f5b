package interaction

import (
	"fmt"
	"time"

	"planogram-editor/internal/common/deferred"
	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/validation"

	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Drag controller
// ============================================================

type State string

const (
	StateIdle       State = "idle"
	StateDragging   State = "dragging"
	StateCommitting State = "committing"
)

// DefaultThrottle is the minimum interval between processed drag moves.
const DefaultThrottle = 16 * time.Millisecond

// Dispatcher receives the single action a finished gesture produces.
type Dispatcher interface {
	AddItemFromSku(sku models.Sku, rowID string, stackIndex int, doorID string) (models.Item, error)
	MoveItem(itemID, rowID string, stackIndex int, doorID string) error
	ReorderStack(rowID string, oldIndex, newIndex int, doorID string) error
	StackItem(draggedID, targetID string) error
}

// Command records what End dispatched.
type Command struct {
	Action   string            `json:"action"` // add, move, reorder, stack or none
	ItemID   string            `json:"itemId,omitempty"`
	Row      validation.RowKey `json:"row"`
	Index    int               `json:"index"`
	TargetID string            `json:"targetId,omitempty"`
}

// Controller turns a pointer drag into at most one store action. Drag moves
// only read the snapshot captured at Start.
type Controller struct {
	policy   validation.Policy
	throttle *deferred.Throttle

	state     State
	ref       models.Refrigerator
	rules     bool
	dragged   validation.Dragged
	sku       *models.Sku
	targets   validation.DropTargets
	indicator Indicator
}

// New builds an idle controller. now may be nil.
func New(interval time.Duration, now func() time.Time, policy validation.Policy) *Controller {
	return &Controller{
		policy:    policy,
		throttle:  deferred.NewThrottle(interval, now),
		state:     StateIdle,
		indicator: none(),
	}
}

func (c *Controller) State() State                    { return c.state }
func (c *Controller) Indicator() Indicator            { return c.indicator }
func (c *Controller) Targets() validation.DropTargets { return c.targets }
func (c *Controller) Dragged() validation.Dragged     { return c.dragged }

// StartItem begins dragging a placed item and validates targets once.
func (c *Controller) StartItem(ref models.Refrigerator, itemID string, rulesEnabled bool) (validation.DropTargets, error) {
	dragged, ok := validation.FromItem(ref, itemID)
	if !ok {
		return validation.DropTargets{}, fmt.Errorf("drag start: item %s not found", itemID)
	}
	c.begin(ref, dragged, nil, rulesEnabled)
	return c.targets, nil
}

// StartSku begins dragging a catalog template from the palette.
func (c *Controller) StartSku(ref models.Refrigerator, sku models.Sku, rulesEnabled bool) validation.DropTargets {
	sku = sku.WithPixels()
	c.begin(ref, validation.FromSku(sku), &sku, rulesEnabled)
	return c.targets
}

func (c *Controller) begin(ref models.Refrigerator, dragged validation.Dragged, sku *models.Sku, rules bool) {
	c.ref = ref
	c.rules = rules
	c.dragged = dragged
	c.sku = sku
	c.targets = validation.ValidateDropTargets(ref, dragged, rules)
	c.indicator = none()
	c.throttle.Reset()
	c.state = StateDragging
	log.Debugf("[DRAG] start %s: %d rows, %d stack targets", c.describe(), len(c.targets.Rows), len(c.targets.Stacks))
}

// Move processes a pointer move. It returns the current indicator and
// whether it changed; throttled or redundant moves report false.
func (c *Controller) Move(h Hover) (Indicator, bool) {
	if c.state != StateDragging {
		return c.indicator, false
	}
	if !c.throttle.Allow() {
		return c.indicator, false
	}
	return c.apply(c.evaluate(h))
}

// End finishes the gesture. A non-nil final hover is evaluated without
// throttling. The dispatcher receives at most one action.
func (c *Controller) End(final *Hover, d Dispatcher) (Command, error) {
	if c.state != StateDragging {
		return Command{Action: "none"}, nil
	}
	if final != nil {
		c.apply(c.evaluate(*final))
	}

	c.state = StateCommitting
	defer c.reset()

	ind := c.indicator
	switch ind.Kind {
	case KindStack:
		cmd := Command{Action: "stack", ItemID: c.dragged.ItemID, TargetID: ind.TargetStackID}
		return cmd, d.StackItem(c.dragged.ItemID, ind.TargetStackID)

	case KindReorder:
		if c.sku != nil {
			item, err := d.AddItemFromSku(*c.sku, ind.Row.RowID, ind.Index, ind.Row.DoorID)
			return Command{Action: "add", ItemID: item.ID, Row: ind.Row, Index: ind.Index}, err
		}
		origin := c.dragged.Origin
		if origin != nil && origin.DoorID == ind.Row.DoorID && origin.RowID == ind.Row.RowID {
			newIndex := ind.Index
			if newIndex > origin.StackIndex {
				newIndex--
			}
			cmd := Command{Action: "reorder", ItemID: c.dragged.ItemID, Row: ind.Row, Index: newIndex}
			return cmd, d.ReorderStack(ind.Row.RowID, origin.StackIndex, newIndex, ind.Row.DoorID)
		}
		cmd := Command{Action: "move", ItemID: c.dragged.ItemID, Row: ind.Row, Index: ind.Index}
		return cmd, d.MoveItem(c.dragged.ItemID, ind.Row.RowID, ind.Index, ind.Row.DoorID)
	}
	return Command{Action: "none"}, nil
}

// Cancel abandons the gesture without touching the store.
func (c *Controller) Cancel() {
	if c.state == StateDragging {
		log.Debugf("[DRAG] cancel %s", c.describe())
	}
	c.reset()
}

// ============================================================
// Internals
// ============================================================

func (c *Controller) apply(candidate Indicator) (Indicator, bool) {
	if candidate == c.indicator {
		return c.indicator, false
	}
	c.indicator = candidate
	return c.indicator, true
}

// evaluate prefers a valid stack under the pointer over a row insertion.
func (c *Controller) evaluate(h Hover) Indicator {
	var hint string

	if h.OverItemID != "" && c.sku == nil && c.dragged.Stackable {
		op := validation.EvaluateStackingOpportunity(c.ref, c.dragged, h.OverItemID, c.rules, c.policy)
		if op.Valid && c.targets.StackValid(op.TargetID) {
			loc, _ := c.ref.Locate(op.TargetID)
			return Indicator{
				Kind:          KindStack,
				Row:           validation.RowKey{DoorID: loc.DoorID, RowID: loc.RowID},
				Index:         loc.StackIndex,
				TargetStackID: op.TargetID,
				Opportunity:   op,
				Message:       op.Message,
			}
		}
		if op.Reason != validation.ReasonSameItem {
			hint = op.Message
		}
	}

	if h.Row.RowID == "" {
		return none()
	}
	if c.targets.RowValid(h.Row) {
		return Indicator{Kind: KindReorder, Row: h.Row, Index: max(0, h.Index), Message: hint}
	}
	_, msg := validation.ExplainRow(c.ref, c.dragged, h.Row, c.rules)
	return Indicator{Kind: KindNone, Row: h.Row, Message: msg}
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.ref = nil
	c.sku = nil
	c.dragged = validation.Dragged{}
	c.targets = validation.DropTargets{}
	c.indicator = none()
}

func (c *Controller) describe() string {
	if c.sku != nil {
		return "sku " + c.sku.SkuID
	}
	return "item " + c.dragged.ItemID
}

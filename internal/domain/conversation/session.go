package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Flow identifies one guided-entry dialogue
type Flow string

const (
	FlowAddCategory Flow = "add_category"
	FlowAddProduct  Flow = "add_product"
	FlowReset       Flow = "reset"
)

// Session is one in-progress guided flow for a single administrator.
// Each flow is its own type with an explicit step enum, so a session can
// never hold fields from two flows at once: starting a new flow replaces
// the stored session wholesale.
type Session interface {
	Flow() Flow
}

// AddCategoryStep enumerates the states of the add-category flow
type AddCategoryStep string

const (
	// StepSelectingParent is only entered for the subcategory variant
	StepSelectingParent      AddCategoryStep = "selecting_parent"
	StepAwaitingCategoryName AddCategoryStep = "awaiting_name"
)

// AddCategorySession accumulates fields for one new category
type AddCategorySession struct {
	Step     AddCategoryStep `json:"step"`
	ParentID *uuid.UUID      `json:"parent_id,omitempty"`
}

// Flow returns the flow this session belongs to
func (*AddCategorySession) Flow() Flow { return FlowAddCategory }

// AddProductStep enumerates the states of the add-product flow
type AddProductStep string

const (
	StepSelectingCategory   AddProductStep = "selecting_category"
	StepAwaitingProductName AddProductStep = "awaiting_name"
	StepAwaitingDescription AddProductStep = "awaiting_description"
	StepAwaitingPrice       AddProductStep = "awaiting_price"
	StepAwaitingPhoto       AddProductStep = "awaiting_photo"
)

// AddProductSession accumulates fields for one new product
type AddProductSession struct {
	Step        AddProductStep  `json:"step"`
	CategoryID  uuid.UUID       `json:"category_id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price,omitempty"`
}

// Flow returns the flow this session belongs to
func (*AddProductSession) Flow() Flow { return FlowAddProduct }

// ResetSession awaits explicit confirmation of the destructive full reset
type ResetSession struct{}

// Flow returns the flow this session belongs to
func (*ResetSession) Flow() Flow { return FlowReset }

// envelope is the serialized form of a session: the flow tag selects the
// concrete state type on decode
type envelope struct {
	Flow  Flow            `json:"flow"`
	State json.RawMessage `json:"state"`
}

// Marshal serializes a session into its tagged envelope
func Marshal(session Session) ([]byte, error) {
	state, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Flow: session.Flow(), State: state})
}

// Unmarshal deserializes a tagged envelope back into a concrete session
func Unmarshal(data []byte) (Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	var session Session
	switch env.Flow {
	case FlowAddCategory:
		session = &AddCategorySession{}
	case FlowAddProduct:
		session = &AddProductSession{}
	case FlowReset:
		session = &ResetSession{}
	default:
		return nil, fmt.Errorf("unknown session flow %q", env.Flow)
	}

	if err := json.Unmarshal(env.State, session); err != nil {
		return nil, err
	}
	return session, nil
}

package panelx

import (
	"math"

	"github.com/Abraxas-365/debelu/pkg/chat/toolx"
)

// Tool names with panel side effects.
const (
	ToolOpenUIPanel       = "open_ui_panel"
	ToolCompareProducts   = "compare_products"
	ToolSearchMarketplace = "search_marketplace"
)

// SearchPanelThreshold is the number of products a search must exceed
// before results move from the conversation into the intelligence panel.
const SearchPanelThreshold = 3

// Handler inspects a tool result and reports the panel it activates, if any.
type Handler func(result any) (Activation, bool)

// Dispatcher maps tool names to handlers. Tools without a handler have no
// side effect. A Dispatcher is read-only once the turn processor uses it.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// DefaultDispatcher returns the marketplace dispatch table.
func DefaultDispatcher() *Dispatcher {
	return NewDispatcher().
		Register(ToolOpenUIPanel, openUIPanel).
		Register(ToolCompareProducts, compareProducts).
		Register(ToolSearchMarketplace, searchMarketplace)
}

// Register installs h for toolName, replacing any previous handler.
func (d *Dispatcher) Register(toolName string, h Handler) *Dispatcher {
	d.handlers[toolName] = h
	return d
}

// Decide returns the panel activation caused by inv. It is pure: Called
// invocations and tools without a handler never activate anything.
func (d *Dispatcher) Decide(inv toolx.Invocation) (Activation, bool) {
	result, ok := inv.Result()
	if !ok {
		return Activation{}, false
	}
	h, ok := d.handlers[inv.ToolName]
	if !ok {
		return Activation{}, false
	}
	return h(result)
}

func openUIPanel(result any) (Activation, bool) {
	obj, ok := result.(map[string]any)
	if !ok {
		return Activation{}, false
	}
	panel, ok := obj["panel"].(string)
	if !ok || panel == "" {
		return Activation{}, false
	}
	return Activation{Kind: Kind(panel)}, true
}

func compareProducts(result any) (Activation, bool) {
	if !LooksLikeProductList(result) {
		return Activation{}, false
	}
	return Activation{Kind: KindCompare, Payload: ProductsPayload{Products: result.([]any)}}, true
}

func searchMarketplace(result any) (Activation, bool) {
	if !LooksLikeProductList(result) {
		return Activation{}, false
	}
	products := result.([]any)
	if len(products) <= SearchPanelThreshold {
		return Activation{}, false
	}
	return Activation{Kind: KindIntelligence, Payload: ProductsPayload{Products: products}}, true
}

// LooksLikeProductList reports whether v is a non-empty array of objects
// that each carry a truthy id and a truthy name. Price is not required.
func LooksLikeProductList(v any) bool {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return false
	}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok || !truthy(obj["id"]) || !truthy(obj["name"]) {
			return false
		}
	}
	return true
}

// truthy follows JSON-script truthiness: null, false, 0, NaN and "" are falsy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

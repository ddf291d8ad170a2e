package configurator

import "encoding/json"

// Message types exchanged with the embedding page.
const (
	MessageFirstRender  = "firstRender"
	MessageLabelAdded   = "labelAdded"
	MessageAddToCart    = "AddToCart"
	MessageDesignWithAI = "designWithAi"
	MessageUploadLabels = "uploadLabels"
	MessageUploadDesign = "uploadDesign"
)

// Envelope is the fixed wrapper for every outbound message.
type Envelope struct {
	CustomMessageType string `json:"customMessageType"`
	Message           any    `json:"message"`
}

// InboundEnvelope keeps the message body raw until the type is known.
type InboundEnvelope struct {
	CustomMessageType string          `json:"customMessageType"`
	Message           json.RawMessage `json:"message"`
}

type FirstRenderMessage struct {
	CloseLoadingScreen bool `json:"closeLoadingScreen"`
}

type LabelAddedMessage struct {
	Order        RoleOrder      `json:"order"`
	DesignSide   DesignSide     `json:"designSide"`
	DesignExport map[string]any `json:"designExport"`
	ProductSKU   *string        `json:"productSku"`
}

type AddToCartMessage struct {
	Preview          string            `json:"preview"`
	Quantity         int               `json:"quantity"`
	CompositionID    string            `json:"compositionId"`
	ZakekeAttributes map[string]string `json:"zakekeAttributes"`
	ProductID        *string           `json:"product_id"`
	Bottle           *Mini             `json:"bottle"`
	Liquid           *Mini             `json:"liquid"`
	Closure          *Mini             `json:"closure"`
	Label            *Mini             `json:"label"`
}

// SelectionsMessage is the body of designWithAi and uploadLabels.
type SelectionsMessage struct {
	Order      RoleOrder `json:"order"`
	ProductSKU *string   `json:"productSku"`
	Price      *float64  `json:"price"`
}

type UploadDesignMessage struct {
	DesignExport map[string]any `json:"designExport"`
	DesignSide   string         `json:"designSide"`
	Order        any            `json:"order"`
}

// SourceURL returns the export's remote image location.
func (m UploadDesignMessage) SourceURL() string {
	if m.DesignExport == nil {
		return ""
	}
	for _, k := range []string{"s3url", "s3Url", "url"} {
		if v, ok := m.DesignExport[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

package configurator

import (
	"encoding/json"
	"strings"
)

// NoSelectionName is the engine's placeholder option that keeps an attribute visually empty.
const NoSelectionName = "No Selection"

type Option struct {
	ID          int    `json:"id"`
	GUID        string `json:"guid"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Selected    bool   `json:"selected"`
}

// IsNoSelection reports whether the option is the "No Selection" placeholder.
func (o *Option) IsNoSelection() bool {
	if o == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(o.Name), NoSelectionName)
}

type Attribute struct {
	ID      int       `json:"id"`
	GUID    string    `json:"guid,omitempty"`
	Name    string    `json:"name"`
	Code    string    `json:"code,omitempty"`
	Enabled bool      `json:"enabled"`
	Options []*Option `json:"options"`
}

type Step struct {
	ID         int          `json:"id"`
	GUID       string       `json:"guid,omitempty"`
	Name       string       `json:"name"`
	Attributes []*Attribute `json:"attributes"`
}

// Options flattens every option of every attribute in traversal order.
func (s *Step) Options() []*Option {
	if s == nil {
		return nil
	}
	var out []*Option
	for _, a := range s.Attributes {
		if a == nil {
			continue
		}
		for _, o := range a.Options {
			if o != nil {
				out = append(out, o)
			}
		}
	}
	return out
}

type Group struct {
	ID               int          `json:"id"`
	GUID             string       `json:"guid,omitempty"`
	Name             string       `json:"name"`
	CameraLocationID string       `json:"cameraLocationId,omitempty"`
	Steps            []*Step      `json:"steps"`
	Attributes       []*Attribute `json:"attributes,omitempty"`
}

// Area is a print-ready region on the model surface.
type Area struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Areas []*Area `json:"areas"`
}

// itemAreaRefKeys lists the item fields that may carry an area reference, in lookup order.
var itemAreaRefKeys = []string{
	"areaId", "areaID",
	"sideId", "sideID",
	"side", "area",
	"sides", "sideIds", "sideIDs",
	"areaIds", "areaIDs",
}

// Item is a design asset attached to an area. The engine reports the owning area under
// several field names and shapes; AreaRefs keeps them in lookup order for normalization.
type Item struct {
	GUID     string `json:"guid"`
	Name     string `json:"name,omitempty"`
	ImageID  int    `json:"imageId,omitempty"`
	Deleted  bool   `json:"deleted"`
	AreaRefs []any  `json:"-"`
}

func (it *Item) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var base struct {
		GUID    string `json:"guid"`
		Name    string `json:"name"`
		ImageID int    `json:"imageId"`
		Deleted bool   `json:"deleted"`
	}
	if err := json.Unmarshal(b, &base); err != nil {
		return err
	}
	it.GUID = base.GUID
	it.Name = base.Name
	it.ImageID = base.ImageID
	it.Deleted = base.Deleted
	it.AreaRefs = nil
	for _, k := range itemAreaRefKeys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			continue
		}
		it.AreaRefs = append(it.AreaRefs, decoded)
	}
	return nil
}

// Image is the engine handle returned when an image is created from a remote URL.
type Image struct {
	ImageID int    `json:"imageID"`
	URL     string `json:"url"`
	Mime    string `json:"mime,omitempty"`
}

// CartData is what the engine hands to the pre-cart callback.
type CartData struct {
	Preview     string            `json:"preview"`
	Quantity    int               `json:"quantity"`
	Composition string            `json:"composition"`
	Attributes  map[string]string `json:"attributes"`
}

// EngineState is a point-in-time copy of everything the engine exposes to the reactor.
type EngineState struct {
	Groups        []*Group `json:"groups"`
	Product       *Product `json:"product"`
	Price         *float64 `json:"price"`
	Items         []*Item  `json:"items"`
	SceneLoading  bool     `json:"isSceneLoading"`
	AssetsLoading bool     `json:"isAssetsLoading"`
	ViewerReady   *bool    `json:"isViewerReady,omitempty"`
}

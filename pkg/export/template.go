package export

// Template is the campaign service's template content payload.
type Template struct {
	Repeaters []Repeater `json:"Repeaters"`
}

// Repeater is a repeatable template region.
type Repeater struct {
	Items []Item `json:"Items"`
}

// Item is one repeater entry. Fragments of the same kind keep document order.
type Item struct {
	Singlelines []Singleline `json:"Singlelines,omitempty"`
	Multilines  []Multiline  `json:"Multilines,omitempty"`
	Images      []Image      `json:"Images,omitempty"`
}

// Empty reports whether the item carries no fragment.
func (i Item) Empty() bool {
	return len(i.Singlelines) == 0 && len(i.Multilines) == 0 && len(i.Images) == 0
}

type Singleline struct {
	Content string `json:"Content"`
	Href    string `json:"Href,omitempty"`
}

type Multiline struct {
	Content string `json:"Content"`
}

type Image struct {
	Content string `json:"Content"`
	Alt     string `json:"Alt"`
	Href    string `json:"Href,omitempty"`
}

// CampaignMeta is the sender and audience data supplied by configuration.
type CampaignMeta struct {
	Name       string   `json:"Name" yaml:"name"`
	Subject    string   `json:"Subject" yaml:"subject"`
	FromName   string   `json:"FromName" yaml:"from_name"`
	FromEmail  string   `json:"FromEmail" yaml:"from_email"`
	ReplyTo    string   `json:"ReplyTo" yaml:"reply_to"`
	ListIDs    []string `json:"ListIDs" yaml:"list_ids"`
	SegmentIDs []string `json:"SegmentIDs" yaml:"segment_ids"`
	TemplateID string   `json:"TemplateID" yaml:"template_id"`
}

// Campaign is the create-from-template request body.
type Campaign struct {
	CampaignMeta
	TemplateContent Template `json:"TemplateContent"`
}

// NewCampaign combines metadata with exported content. Nil id lists are
// sent as empty arrays.
func NewCampaign(meta CampaignMeta, t Template) Campaign {
	if meta.ListIDs == nil {
		meta.ListIDs = []string{}
	}
	if meta.SegmentIDs == nil {
		meta.SegmentIDs = []string{}
	}
	return Campaign{CampaignMeta: meta, TemplateContent: t}
}

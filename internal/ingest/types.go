package ingest

// Document is the root of a seed file. Entities reference each other by
// name, so a seed can be written without knowing any ids.
type Document struct {
	Campaign  *CampaignDoc  `yaml:"campaign"`
	Tags      []TagDoc      `yaml:"tags"`
	Entities  []EntityDoc   `yaml:"entities"`
	Relations []RelationDoc `yaml:"relations"`
}

type CampaignDoc struct {
	Name     string         `yaml:"name"`
	Settings map[string]any `yaml:"settings"`
}

type TagDoc struct {
	Name        string `yaml:"name"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
}

type EntityDoc struct {
	Name    string         `yaml:"name"`
	Kind    string         `yaml:"kind"`
	Subtype string         `yaml:"subtype"`
	Entry   string         `yaml:"entry"`
	Image   string         `yaml:"image"`
	Parent  string         `yaml:"parent"`
	Private bool           `yaml:"private"`
	Data    map[string]any `yaml:"data"`
	Tags    []string       `yaml:"tags"`

	Attributes []AttributeDoc `yaml:"attributes"`
	Posts      []PostDoc      `yaml:"posts"`
	Inventory  []InventoryDoc `yaml:"inventory"`
	Abilities  []AbilityDoc   `yaml:"abilities"`
}

type AttributeDoc struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type PostDoc struct {
	Name    string `yaml:"name"`
	Entry   string `yaml:"entry"`
	Private bool   `yaml:"private"`
}

type InventoryDoc struct {
	Item        string `yaml:"item"`
	Quantity    int    `yaml:"quantity"`
	Description string `yaml:"description"`
}

type AbilityDoc struct {
	Ability     string `yaml:"ability"`
	ChargesUsed int    `yaml:"charges_used"`
	Notes       string `yaml:"notes"`
}

type RelationDoc struct {
	Source   string `yaml:"source"`
	Target   string `yaml:"target"`
	Type     string `yaml:"type"`
	Mirror   string `yaml:"mirror"`
	Attitude int    `yaml:"attitude"`
	Private  bool   `yaml:"private"`
}

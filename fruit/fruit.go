package fruit

// Fruit is a stock record.  Its id is the key it is stored under.
type Fruit struct {
	Name  string `json:"name" yaml:"name"`
	Stock int    `json:"stock" yaml:"stock"`
}

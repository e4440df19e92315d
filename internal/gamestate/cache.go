// Package gamestate turns per-region OCR readings into stable snapshots.
package gamestate

// Baseline values used until a field has been read successfully at least
// once. Supply cap starts at the standard 200 so ratio math stays sane.
const (
	DefaultMinerals   = 0
	DefaultGas        = 0
	DefaultSupplyUsed = 0
	DefaultSupplyCap  = 200
	DefaultGameTime   = "00:00"
)

// Cache holds the last successfully parsed value per quantity. OCR fails
// often enough that a single bad frame would otherwise report a spurious
// reset; values survive until overwritten or an explicit Reset.
//
// The cache is owned by exactly one Synthesizer and is not safe for
// concurrent use.
type Cache struct {
	minerals   int
	gas        int
	supplyUsed int
	supplyCap  int
	gameTime   string
}

// NewCache returns a cache populated with baseline values.
func NewCache() *Cache {
	c := &Cache{}
	c.Reset()
	return c
}

// Reset restores every field to its baseline.
func (c *Cache) Reset() {
	c.minerals = DefaultMinerals
	c.gas = DefaultGas
	c.supplyUsed = DefaultSupplyUsed
	c.supplyCap = DefaultSupplyCap
	c.gameTime = DefaultGameTime
}

// Resources returns the cached minerals and gas.
func (c *Cache) Resources() (minerals, gas int) {
	return c.minerals, c.gas
}

// Supply returns the cached supply used and cap.
func (c *Cache) Supply() (used, cap int) {
	return c.supplyUsed, c.supplyCap
}

// GameTime returns the cached timer display string.
func (c *Cache) GameTime() string {
	return c.gameTime
}

// SetResources overwrites the cached minerals and gas.
func (c *Cache) SetResources(minerals, gas int) {
	c.minerals = minerals
	c.gas = gas
}

// SetSupply overwrites the cached supply values.
func (c *Cache) SetSupply(used, cap int) {
	c.supplyUsed = used
	c.supplyCap = cap
}

// SetGameTime overwrites the cached timer display string.
func (c *Cache) SetGameTime(display string) {
	c.gameTime = display
}

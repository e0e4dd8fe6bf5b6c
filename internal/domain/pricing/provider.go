package pricing

import "sync/atomic"

// Provider раздаёт текущий снимок прайса. Снимок не меняется на месте:
// правка цен собирает новый Catalog и ставит его через Replace.
type Provider struct {
	cur atomic.Pointer[Catalog]
}

func NewProvider(c *Catalog) (*Provider, error) {
	p := &Provider{}
	if err := p.Replace(c); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Catalog() *Catalog { return p.cur.Load() }

func (p *Provider) Replace(c *Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	p.cur.Store(c)
	return nil
}

// Reset возвращает заводской прайс.
func (p *Provider) Reset() { p.cur.Store(DefaultCatalog()) }

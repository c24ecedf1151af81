package types

import (
	"fmt"
	"strconv"
)

// SymbolsGroup is a symbol group configuration
type SymbolsGroup struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ID          string `json:"id,omitempty"`
}

func (g *SymbolsGroup) Type() EntityType    { return EntityTypeSymbolsGroups }
func (g *SymbolsGroup) NaturalKey() string  { return g.Name }
func (g *SymbolsGroup) DisplayName() string { return g.Name }
func (g *SymbolsGroup) ServerID() string    { return g.ID }
func (g *SymbolsGroup) SetServerID(id string) { g.ID = id }

func (g *SymbolsGroup) ApplyPrefix(prefix string) {
	g.Name = prefix + g.Name
}

func (g *SymbolsGroup) Payload() map[string]any {
	return map[string]any{
		"name":        g.Name,
		"description": g.Description,
	}
}

func (g *SymbolsGroup) VerifyFields() map[string]any {
	return map[string]any{"name": g.Name}
}

// Symbol is a trading symbol configuration
type Symbol struct {
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	BaseCurrency   string  `json:"baseCurrency,omitempty"`
	QuoteCurrency  string  `json:"quoteCurrency,omitempty"`
	SymbolsGroup   string  `json:"symbolsGroup,omitempty"` // source group name
	SymbolsGroupID string  `json:"symbolsGroupId,omitempty"`
	Digits         int     `json:"digits,omitempty"`
	ContractSize   float64 `json:"contractSize,omitempty"`
	TickSize       float64 `json:"tickSize,omitempty"`
	TickValue      float64 `json:"tickValue,omitempty"`
	Spread         float64 `json:"spread,omitempty"`
	SpreadBalance  float64 `json:"spreadBalance,omitempty"`
	SpreadFixed    bool    `json:"spreadFixed,omitempty"`
	MinVolume      float64 `json:"minVolume,omitempty"`
	MaxVolume      float64 `json:"maxVolume,omitempty"`
	VolumeStep     float64 `json:"volumeStep,omitempty"`
	SwapLong       float64 `json:"swapLong,omitempty"`
	SwapShort      float64 `json:"swapShort,omitempty"`
	SwapMode       int     `json:"swapMode,omitempty"`
	ID             string  `json:"id,omitempty"`
}

func (s *Symbol) Type() EntityType      { return EntityTypeSymbols }
func (s *Symbol) NaturalKey() string    { return s.Name }
func (s *Symbol) DisplayName() string   { return s.Name }
func (s *Symbol) ServerID() string      { return s.ID }
func (s *Symbol) SetServerID(id string) { s.ID = id }

func (s *Symbol) ApplyPrefix(prefix string) {
	s.Name = prefix + s.Name
}

func (s *Symbol) Payload() map[string]any {
	payload := map[string]any{
		"name":          s.Name,
		"description":   s.Description,
		"baseCurrency":  s.BaseCurrency,
		"quoteCurrency": s.QuoteCurrency,
		"digits":        s.Digits,
		"contractSize":  s.ContractSize,
		"tickSize":      s.TickSize,
		"tickValue":     s.TickValue,
		"spread":        s.Spread,
		"spreadBalance": s.SpreadBalance,
		"spreadFixed":   s.SpreadFixed,
		"minVolume":     s.MinVolume,
		"maxVolume":     s.MaxVolume,
		"volumeStep":    s.VolumeStep,
		"swapLong":      s.SwapLong,
		"swapShort":     s.SwapShort,
		"swapMode":      s.SwapMode,
	}
	if s.SymbolsGroupID != "" {
		payload["symbolsGroupId"] = s.SymbolsGroupID
	}
	return payload
}

func (s *Symbol) VerifyFields() map[string]any {
	return map[string]any{"name": s.Name}
}

// TradersGroup is a trader group configuration
type TradersGroup struct {
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Leverage        float64 `json:"leverage,omitempty"`
	MarginMode      int     `json:"marginMode,omitempty"`
	MarginCallLevel float64 `json:"marginCallLevel,omitempty"`
	StopOutLevel    float64 `json:"stopOutLevel,omitempty"`
	ID              string  `json:"id,omitempty"`
}

func (g *TradersGroup) Type() EntityType      { return EntityTypeTradersGroups }
func (g *TradersGroup) NaturalKey() string    { return g.Name }
func (g *TradersGroup) DisplayName() string   { return g.Name }
func (g *TradersGroup) ServerID() string      { return g.ID }
func (g *TradersGroup) SetServerID(id string) { g.ID = id }

func (g *TradersGroup) ApplyPrefix(prefix string) {
	g.Name = prefix + g.Name
}

func (g *TradersGroup) Payload() map[string]any {
	return map[string]any{
		"name":            g.Name,
		"description":     g.Description,
		"leverage":        g.Leverage,
		"marginMode":      g.MarginMode,
		"marginCallLevel": g.MarginCallLevel,
		"stopOutLevel":    g.StopOutLevel,
	}
}

func (g *TradersGroup) VerifyFields() map[string]any {
	return map[string]any{"name": g.Name}
}

// Trader is a trading account. Login is the natural key carried over from
// the source platform; TradersGroupID is resolved at execution time from
// the source group path.
type Trader struct {
	Login            int64  `json:"login"`
	Name             string `json:"name,omitempty"`
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Group            string `json:"group,omitempty"` // source group path
	TradersGroupID   string `json:"tradersGroupId,omitempty"`
	TradeType        string `json:"tradeType,omitempty"` // Demo or Real
	Country          string `json:"country,omitempty"`
	Balance          float64 `json:"balance,omitempty"`
	Credit           float64 `json:"credit,omitempty"`
	Leverage         int     `json:"leverage,omitempty"`
	Password         string  `json:"password,omitempty"`
	InvestorPassword string  `json:"investorPassword,omitempty"`
	IsEnabled        bool    `json:"isEnabled"`
	IsReadOnly       bool    `json:"isReadOnly"`
	ID               string  `json:"id,omitempty"`
}

func (t *Trader) Type() EntityType   { return EntityTypeTraders }
func (t *Trader) NaturalKey() string { return strconv.FormatInt(t.Login, 10) }

func (t *Trader) DisplayName() string {
	return fmt.Sprintf("Trader %d (%s)", t.Login, t.Name)
}

func (t *Trader) ServerID() string      { return t.ID }
func (t *Trader) SetServerID(id string) { t.ID = id }

// ApplyPrefix marks the trader's name fields. The login stays untouched:
// it is numeric and the source of record for mapping.
func (t *Trader) ApplyPrefix(prefix string) {
	t.Name = prefix + t.Name
	if t.FirstName != "" {
		t.FirstName = prefix + t.FirstName
	}
}

func (t *Trader) Payload() map[string]any {
	firstName := t.FirstName
	if firstName == "" {
		firstName = t.Name
	}
	lastName := t.LastName
	if lastName == "" {
		lastName = strconv.FormatInt(t.Login, 10)
	}
	payload := map[string]any{
		"name":       t.Name,
		"firstName":  firstName,
		"lastName":   lastName,
		"email":      t.Email,
		"phone":      t.Phone,
		"country":    t.Country,
		"balance":    t.Balance,
		"credit":     t.Credit,
		"leverage":   t.Leverage,
		"tradeType":  t.TradeType,
		"isEnabled":  t.IsEnabled,
		"isReadOnly": t.IsReadOnly,
		// Source platform references, kept for traceability
		"mt5_login": t.Login,
		"mt5_group": t.Group,
		"login":     t.Login,
	}
	if t.TradersGroupID != "" {
		payload["tradersGroupId"] = t.TradersGroupID
	}
	if t.Password != "" {
		payload["password"] = t.Password
	}
	if t.InvestorPassword != "" {
		payload["investorPassword"] = t.InvestorPassword
	}
	return payload
}

func (t *Trader) VerifyFields() map[string]any {
	return map[string]any{"login": t.Login}
}

// Order is a trading order record
type Order struct {
	TransactionID  int64   `json:"transactionId"`
	TraderID       string  `json:"traderId,omitempty"`
	Login          int64   `json:"login,omitempty"`
	Symbol         string  `json:"symbol,omitempty"`
	SymbolID       string  `json:"symbolId,omitempty"`
	OrderType      int     `json:"orderType"`
	State          int     `json:"state"`
	Volume         float64 `json:"volume,omitempty"`
	VolumeCurrent  float64 `json:"volumeCurrent,omitempty"`
	Price          float64 `json:"price,omitempty"`
	PriceCurrent   float64 `json:"priceCurrent,omitempty"`
	StopLoss       float64 `json:"stopLoss,omitempty"`
	TakeProfit     float64 `json:"takeProfit,omitempty"`
	TimeSetup      string  `json:"timeSetup,omitempty"`
	TimeExpiration string  `json:"timeExpiration,omitempty"`
	TimeDone       string  `json:"timeDone,omitempty"`
	Comment        string  `json:"comment,omitempty"`
	ExternalID     string  `json:"externalId,omitempty"`
	ID             string  `json:"id,omitempty"`
}

func (o *Order) Type() EntityType   { return EntityTypeOrders }
func (o *Order) NaturalKey() string { return strconv.FormatInt(o.TransactionID, 10) }

func (o *Order) DisplayName() string {
	return fmt.Sprintf("txId=%d", o.TransactionID)
}

func (o *Order) ServerID() string      { return o.ID }
func (o *Order) SetServerID(id string) { o.ID = id }

// ApplyPrefix marks the comment field. Transaction IDs are numeric and
// must survive unchanged for mapping and verification.
func (o *Order) ApplyPrefix(prefix string) {
	o.Comment = prefix + o.Comment
}

func (o *Order) Payload() map[string]any {
	payload := map[string]any{
		"transactionId": o.TransactionID,
		"orderType":     o.OrderType,
		"state":         o.State,
		"volume":        o.Volume,
		"volumeCurrent": o.VolumeCurrent,
		"price":         o.Price,
		"priceCurrent":  o.PriceCurrent,
		"stopLoss":      o.StopLoss,
		"takeProfit":    o.TakeProfit,
		"comment":       o.Comment,
		"symbol":        o.Symbol,
	}
	if o.TraderID != "" {
		payload["traderId"] = o.TraderID
	}
	if o.SymbolID != "" {
		payload["symbolId"] = o.SymbolID
	}
	if o.TimeSetup != "" {
		payload["timeSetup"] = o.TimeSetup
	}
	if o.TimeExpiration != "" {
		payload["timeExpiration"] = o.TimeExpiration
	}
	if o.TimeDone != "" {
		payload["timeDone"] = o.TimeDone
	}
	return payload
}

func (o *Order) VerifyFields() map[string]any {
	return map[string]any{"transactionId": o.TransactionID}
}

// Position is an open trading position record
type Position struct {
	TransactionID   int64   `json:"transactionId"`
	TraderID        string  `json:"traderId,omitempty"`
	Login           int64   `json:"login,omitempty"`
	Symbol          string  `json:"symbol,omitempty"`
	SymbolID        string  `json:"symbolId,omitempty"`
	PositionType    int     `json:"positionType"` // 0 long, 1 short
	Volume          float64 `json:"volume,omitempty"`
	PriceOpen       float64 `json:"priceOpen,omitempty"`
	PriceCurrent    float64 `json:"priceCurrent,omitempty"`
	PriceStopLoss   float64 `json:"priceStopLoss,omitempty"`
	PriceTakeProfit float64 `json:"priceTakeProfit,omitempty"`
	Swap            float64 `json:"swap,omitempty"`
	Profit          float64 `json:"profit,omitempty"`
	TimeOpen        string  `json:"timeOpen,omitempty"`
	TimeUpdate      string  `json:"timeUpdate,omitempty"`
	Comment         string  `json:"comment,omitempty"`
	ExternalID      string  `json:"externalId,omitempty"`
	ID              string  `json:"id,omitempty"`
}

func (p *Position) Type() EntityType   { return EntityTypePositions }
func (p *Position) NaturalKey() string { return strconv.FormatInt(p.TransactionID, 10) }

func (p *Position) DisplayName() string {
	return fmt.Sprintf("txId=%d", p.TransactionID)
}

func (p *Position) ServerID() string      { return p.ID }
func (p *Position) SetServerID(id string) { p.ID = id }

func (p *Position) ApplyPrefix(prefix string) {
	p.Comment = prefix + p.Comment
}

func (p *Position) Payload() map[string]any {
	payload := map[string]any{
		"transactionId":   p.TransactionID,
		"positionType":    p.PositionType,
		"volume":          p.Volume,
		"priceOpen":       p.PriceOpen,
		"priceCurrent":    p.PriceCurrent,
		"priceStopLoss":   p.PriceStopLoss,
		"priceTakeProfit": p.PriceTakeProfit,
		"swap":            p.Swap,
		"profit":          p.Profit,
		"symbol":          p.Symbol,
		"comment":         p.Comment,
	}
	if p.TraderID != "" {
		payload["traderId"] = p.TraderID
	}
	if p.SymbolID != "" {
		payload["symbolId"] = p.SymbolID
	}
	if p.TimeOpen != "" {
		payload["timeOpen"] = p.TimeOpen
	}
	if p.TimeUpdate != "" {
		payload["timeUpdate"] = p.TimeUpdate
	}
	return payload
}

func (p *Position) VerifyFields() map[string]any {
	return map[string]any{"transactionId": p.TransactionID}
}

// Deal is a closed trade history record
type Deal struct {
	TransactionID int64   `json:"transactionId"`
	TraderID      string  `json:"traderId,omitempty"`
	Login         int64   `json:"login,omitempty"`
	OrderID       string  `json:"orderId,omitempty"`
	PositionID    string  `json:"positionId,omitempty"`
	Symbol        string  `json:"symbol,omitempty"`
	SymbolID      string  `json:"symbolId,omitempty"`
	DealType      int     `json:"dealType"`
	DealEntry     int     `json:"dealEntry"` // 0 in, 1 out, 2 in/out
	Volume        float64 `json:"volume,omitempty"`
	Price         float64 `json:"price,omitempty"`
	Swap          float64 `json:"swap,omitempty"`
	Commission    float64 `json:"commission,omitempty"`
	Profit        float64 `json:"profit,omitempty"`
	TimeExecuted  string  `json:"timeExecuted,omitempty"`
	Comment       string  `json:"comment,omitempty"`
	ExternalID    string  `json:"externalId,omitempty"`
	ID            string  `json:"id,omitempty"`
}

func (d *Deal) Type() EntityType   { return EntityTypeDeals }
func (d *Deal) NaturalKey() string { return strconv.FormatInt(d.TransactionID, 10) }

func (d *Deal) DisplayName() string {
	return fmt.Sprintf("txId=%d", d.TransactionID)
}

func (d *Deal) ServerID() string      { return d.ID }
func (d *Deal) SetServerID(id string) { d.ID = id }

func (d *Deal) ApplyPrefix(prefix string) {
	d.Comment = prefix + d.Comment
}

func (d *Deal) Payload() map[string]any {
	payload := map[string]any{
		"transactionId": d.TransactionID,
		"dealType":      d.DealType,
		"dealEntry":     d.DealEntry,
		"volume":        d.Volume,
		"price":         d.Price,
		"swap":          d.Swap,
		"commission":    d.Commission,
		"profit":        d.Profit,
		"symbol":        d.Symbol,
		"comment":       d.Comment,
	}
	if d.TraderID != "" {
		payload["traderId"] = d.TraderID
	}
	if d.OrderID != "" {
		payload["orderId"] = d.OrderID
	}
	if d.PositionID != "" {
		payload["positionId"] = d.PositionID
	}
	if d.SymbolID != "" {
		payload["symbolId"] = d.SymbolID
	}
	if d.TimeExecuted != "" {
		payload["timeExecuted"] = d.TimeExecuted
	}
	return payload
}

func (d *Deal) VerifyFields() map[string]any {
	return map[string]any{"transactionId": d.TransactionID}
}

package services

import (
	"time"

	"github.com/google/uuid"
)

// DocumentMeta is the header information printed on exported documents.
type DocumentMeta struct {
	ProjectName    string     `json:"projectName"`
	Client         string     `json:"client"`
	Contractor     string     `json:"contractor"`
	Consultant     string     `json:"consultant"`
	CertNo         string     `json:"certNo"`
	ValuationDate  string     `json:"valuationDate"`
	ContractRef    string     `json:"contractRef"`
	IsFinalAccount bool       `json:"isFinalAccount"`
	Signatures     Signatures `json:"signatures"`
}

// Signature is a name and date on the approval block.
type Signature struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Signatures is the three-party approval block.
type Signatures struct {
	Prepared Signature `json:"prepared"`
	Checked  Signature `json:"checked"`
	Approved Signature `json:"approved"`
}

// Session is one user's working copy of a takeoff. It is not safe for
// concurrent use; callers serialise access.
type Session struct {
	Takeoff    TakeoffResult
	Mode       Mode
	Settings   Settings
	Meta       DocumentMeta
	Prices     map[string]float64
	Overrides  map[GroupKey]QuantityOverride
	Breakdowns map[GroupKey]RateBreakdown
}

// NewSession starts a session from an extraction result. Missing IDs are
// filled in and, in payment mode, overrides are seeded from the items.
func NewSession(t TakeoffResult, mode Mode, settings Settings, now time.Time) *Session {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Date == "" {
		t.Date = now.UTC().Format(time.RFC3339)
	}
	t.Items = NormalizeItems(t.Items)

	s := &Session{
		Takeoff:    t,
		Mode:       mode,
		Settings:   settings,
		Prices:     make(map[string]float64),
		Overrides:  make(map[GroupKey]QuantityOverride),
		Breakdowns: make(map[GroupKey]RateBreakdown),
		Meta: DocumentMeta{
			ProjectName:   t.ProjectName,
			CertNo:        "01",
			ValuationDate: now.Format("2006-01-02"),
			Signatures: Signatures{
				Prepared: Signature{Date: now.Format("2006-01-02")},
			},
		},
	}
	if t.UnitSystem != "" {
		s.Settings.UnitSystem = t.UnitSystem
	}
	s.seedOverrides(t.Items)
	return s
}

// NormalizeItems returns a copy of items with missing IDs generated, an
// empty description filled from the bill description and category aliases
// resolved.
func NormalizeItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Description == "" {
			item.Description = item.BillItemDescription
		}
		item.Category = CanonicalCategory(item.Category)
		out[i] = item
	}
	return out
}

func (s *Session) seedOverrides(items []LineItem) {
	if s.Mode != ModePayment {
		return
	}
	for k, o := range OverridesFromItems(items) {
		s.Overrides[k] = o
	}
}

// Merge appends a new analysis batch.
func (s *Session) Merge(batch TakeoffResult, batchFiles []string, now time.Time) {
	batch.Items = NormalizeItems(batch.Items)
	s.Takeoff = MergeTakeoff(s.Takeoff, batch, batchFiles, now)
	s.seedOverrides(batch.Items)
}

// AppendItems adds imported line items without touching the takeoff header.
// It returns the appended items with their assigned IDs.
func (s *Session) AppendItems(items []LineItem) []LineItem {
	items = NormalizeItems(items)
	s.Takeoff.Items = append(s.Takeoff.Items, items...)
	s.seedOverrides(items)
	return items
}

// SetMode switches between estimation and payment. Entering payment mode
// seeds overrides from the items for groups that have none yet.
func (s *Session) SetMode(mode Mode) {
	s.Mode = mode
	if mode != ModePayment {
		return
	}
	for k, o := range OverridesFromItems(s.Takeoff.Items) {
		if _, ok := s.Overrides[k]; !ok {
			s.Overrides[k] = o
		}
	}
}

// UpdateItem edits one field of one line item.
func (s *Session) UpdateItem(id string, field ItemField, value any) error {
	items, err := UpdateItem(s.Takeoff.Items, id, field, value)
	if err != nil {
		return err
	}
	s.Takeoff.Items = items
	return nil
}

// SetRate sets the manual unit rate for a bill name.
func (s *Session) SetRate(billName string, rate float64) {
	s.Prices[billName] = rate
}

// ClearRate removes a manual rate so the group falls back to its contract
// or estimated rate.
func (s *Session) ClearRate(billName string) {
	delete(s.Prices, billName)
}

// ApplySuggestion parses a suggested rate range and stores its lower bound.
// It reports whether a number was found.
func (s *Session) ApplySuggestion(billName, text string) bool {
	rate, ok := ParseRateSuggestion(text)
	if ok {
		s.SetRate(billName, rate)
	}
	return ok
}

// SetOverride replaces the contract and/or previous quantity of a group.
// Nil fields leave the stored value untouched.
func (s *Session) SetOverride(key GroupKey, o QuantityOverride) {
	cur := s.Overrides[key]
	if o.Contract != nil {
		cur.Contract = o.Contract
	}
	if o.Previous != nil {
		cur.Previous = o.Previous
	}
	s.Overrides[key] = cur
}

// SaveBreakdown stores a rate build-up and makes its rounded final rate the
// group's unit rate.
func (s *Session) SaveBreakdown(key GroupKey, b RateBreakdown) float64 {
	s.Breakdowns[key] = b
	rate := RoundMoney(b.FinalRate())
	s.SetRate(key.BillName, rate)
	return rate
}

// Snapshot is the result of a full recompute.
type Snapshot struct {
	Mode        Mode        `json:"mode"`
	Settings    Settings    `json:"settings"`
	Groups      []BoqGroup  `json:"-"`
	Categories  []Category  `json:"categories"`
	Valuation   Valuation   `json:"valuation"`
	Certificate Certificate `json:"certificate"`
	Analytics   Analytics   `json:"analytics"`
}

// Recompute derives every output from the current inputs. Nothing is
// cached between calls.
func (s *Session) Recompute() Snapshot {
	groups := GroupItems(s.Takeoff.Items, s.Mode, s.Overrides)
	v := Value(groups, s.Prices, s.Mode, s.Settings)
	return Snapshot{
		Mode:        s.Mode,
		Settings:    s.Settings,
		Groups:      groups,
		Categories:  OrderedCategories(groups),
		Valuation:   v,
		Certificate: CalcCertificate(CertificateInputFrom(v, s.Settings)),
		Analytics:   Analyze(v, s.Breakdowns),
	}
}

package dispatch

// Kind tags a ledger event so side-effect handlers can be registered per
// event type.
type Kind string

const (
	KindSettlementCreated   Kind = "settlement.created"
	KindSettlementAnnounced Kind = "settlement.announced"
	KindItemPaid            Kind = "item.paid"
	KindItemsBulkPaid       Kind = "items.bulk_paid"
)

// Event is a tagged value describing a committed ledger change. Events carry
// plain data only; handlers decide what side effect to produce.
type Event interface {
	Kind() Kind
}

// SettlementCreated is emitted once per non-creator participant after a
// settlement and its items have been committed.
type SettlementCreated struct {
	SettlementID     int64
	Code             string
	RestaurantName   string
	CreatorName      string
	ParticipantID    int64
	ParticipantEmail string
	DiscountPercent  float64
	Voucher          float64
	Delivery         float64
	Transaction      float64
	FinalAmount      float64
}

func (SettlementCreated) Kind() Kind { return KindSettlementCreated }

// SettlementAnnounced is emitted exactly once per settlement, after the
// per-participant events, carrying the aggregate view for channel-wide
// announcements.
type SettlementAnnounced struct {
	SettlementID   int64
	Code           string
	RestaurantName string
	CreatorName    string
	TotalAmount    float64
	Participants   int
}

func (SettlementAnnounced) Kind() Kind { return KindSettlementAnnounced }

// ItemPaid is emitted when a participant settles a single item.
type ItemPaid struct {
	SettlementID   int64
	RestaurantName string
	OwnerID        int64
	PayerName      string
	Amount         float64
}

func (ItemPaid) Kind() Kind { return KindItemPaid }

// ItemsBulkPaid is emitted once per bulk payment, aggregated over every item
// that actually transitioned.
type ItemsBulkPaid struct {
	CreatedBy   int64
	PayerName   string
	TotalAmount float64
	Count       int
}

func (ItemsBulkPaid) Kind() Kind { return KindItemsBulkPaid }

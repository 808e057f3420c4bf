package coin

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"

	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi/errors"
)

//-------------- Coin -----------------------

// IsCC is the RegExp to ensure valid token tickers
var IsCC = regexp.MustCompile(`^[A-Z0-9]{1,12}$`).MatchString

// Coin is an integer amount of a single token. Tokens have no fractional part;
// the smallest unit of a token is 1.
type Coin struct {
	Ticker string `protobuf:"bytes,1,opt,name=ticker,proto3" json:"ticker"`
	Amount int64  `protobuf:"varint,2,opt,name=amount,proto3" json:"amount"`
}

func (m *Coin) Reset()      { *m = Coin{} }
func (*Coin) ProtoMessage() {}

var _ proto.Message = (*Coin)(nil)

// NewCoin creates a new coin object
func NewCoin(amount int64, ticker string) Coin {
	return Coin{
		Ticker: ticker,
		Amount: amount,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount int64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Add combines two coins.
// Returns error if they are of different
// currencies, or if the combination would cause
// an overflow
func (c Coin) Add(o Coin) (Coin, error) {
	// If any of the coins represents no value and does not have a ticker
	// set then it has no influence on the addition result.
	if c.Ticker == "" && c.IsZero() {
		return o, nil
	}
	if o.Ticker == "" && o.IsZero() {
		return c, nil
	}

	if !c.SameType(o) {
		err := errors.Wrapf(errors.ErrCurrency, "adding %s to %s", c.Ticker, o.Ticker)
		return Coin{}, err
	}

	if (o.Amount > 0 && c.Amount > math.MaxInt64-o.Amount) ||
		(o.Amount < 0 && c.Amount < math.MinInt64-o.Amount) {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%d + %d", c.Amount, o.Amount)
	}
	c.Amount += o.Amount
	return c, nil
}

// Negative returns the opposite coins value
//   c.Add(c.Negative()).IsZero() == true
func (c Coin) Negative() Coin {
	return Coin{
		Ticker: c.Ticker,
		Amount: -c.Amount,
	}
}

// Subtract given amount.
func (c Coin) Subtract(amount Coin) (Coin, error) {
	if amount.Amount == math.MinInt64 {
		return Coin{}, errors.ErrOverflow
	}
	return c.Add(amount.Negative())
}

// Compare will check values of two coins, without
// inspecting the currency code. It is up to the caller
// to determine if they want to check this.
//
// Returns 1 if c is larger, -1 if o is larger, 0 if equal
func (c Coin) Compare(o Coin) int {
	switch {
	case c.Amount > o.Amount:
		return 1
	case c.Amount < o.Amount:
		return -1
	default:
		return 0
	}
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount == o.Amount
}

// IsEmpty returns true on null or zero amount
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

// IsZero returns true amounts are 0
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// IsNonNegative returns true if the value is 0 or higher
func (c Coin) IsNonNegative() bool {
	return c.Amount >= 0
}

// IsGTE returns true if c is same type and at least
// as large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	return &Coin{
		Ticker: c.Ticker,
		Amount: c.Amount,
	}
}

// Validate ensures that the coin has a valid currency code. It accepts
// negative values, so you may want to make other checks in your business
// logic
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid currency: %q", c.Ticker)
	}
	return nil
}

// UnmarshalJSON accepts either the human readable "<amount> <ticker>" string
// or an object with ticker and amount fields.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Because UnmarshalJSON method is provided, we can no longer use Coin
	// type for this.
	var coin struct {
		Ticker string `json:"ticker"`
		Amount int64  `json:"amount"`
	}
	if err := json.Unmarshal(raw, &coin); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	c.Ticker = coin.Ticker
	c.Amount = coin.Amount
	return nil
}

// String provides a human readable representation of the coin. For a valid
// coin the result can be parsed back with ParseHumanFormat.
func (c *Coin) String() string {
	if c == nil {
		return "<nil>"
	}
	s := strconv.FormatInt(c.Amount, 10)
	if c.Ticker != "" {
		s += " " + c.Ticker
	}
	return s
}

// ParseHumanFormat parse a human readable coin representation. Accepted format
// is a string:
//   "<amount> <ticker>"
func ParseHumanFormat(h string) (Coin, error) {
	results := humanCoinFormatRx.FindStringSubmatch(h)
	if results == nil {
		return Coin{}, errors.Wrapf(errors.ErrInvalidInput, "invalid coin format %q", h)
	}
	amount, err := strconv.ParseInt(results[1]+results[2], 10, 64)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "invalid amount: %s", err)
	}
	return Coin{Ticker: results[3], Amount: amount}, nil
}

var humanCoinFormatRx = regexp.MustCompile(`^(\-?)\s*(\d+)\s*([A-Z0-9]{1,12})$`)

// Set updates this coin value to what is provided. This method implements
// flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}

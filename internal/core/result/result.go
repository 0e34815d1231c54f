// Package result defines the structured outcome codes shared by every
// ledger operation. Codes are grouped by failure category so callers can
// dispatch on the class of failure without matching individual codes.
package result

// Result is the outcome of applying a single ledger operation.
type Result int

// Category classifies a Result. Every failing operation aborts with zero
// state change; the category tells the caller why.
type Category int

const (
	CategorySuccess Category = iota
	CategoryAuthorization
	CategoryCapacity
	CategoryNotFound
	CategoryValidation
	CategoryArithmetic
	CategoryState
)

// Operation result codes, grouped by category. The numeric bands mirror
// the category split: 0 success, 100s authorization, 200s capacity,
// 300s not-found, 400s validation, 500s arithmetic, 600s state.
const (
	Success Result = 0

	// Authorization failures (100-199)
	NotOwner           Result = 100
	NotAdmin           Result = 101
	NotOwnerOrAdmin    Result = 102
	NotProposedOwner   Result = 103
	MissingSigner      Result = 104
	BadSignature       Result = 105
	UnknownSigner      Result = 106
	NotRedemptionAdmin Result = 107
	NotRedeemer        Result = 108

	// Capacity failures (200-299)
	RegistryFull    Result = 200
	VectorTableFull Result = 201
	AdminSetFull    Result = 202
	ApproverSetFull Result = 203

	// Not-found failures (300-399)
	OfferNotFound    Result = 300
	VectorNotFound   Result = 301
	RequestNotFound  Result = 302
	AdminNotFound    Result = 303
	ApproverNotFound Result = 304
	TokenNotFound    Result = 305

	// Validation failures (400-499)
	BadFee            Result = 400
	BadRatio          Result = 401
	BadWindow         Result = 402
	ExpiryInPast      Result = 403
	NonceMismatch     Result = 404
	BadInterval       Result = 405
	BadPrice          Result = 406
	BadAmount         Result = 407
	NullIdentity      Result = 408
	DuplicateAdmin    Result = 409
	DuplicateApprover Result = 410
	SameTokenPair     Result = 411
	RequestReplayed   Result = 412

	// Arithmetic failures (500-599). One generic overflow signal: the
	// caller cannot recover differently depending on which multiply
	// overflowed, so the codes are not subdivided.
	ArithmeticOverflow Result = 500

	// State failures (600-699)
	Halted             Result = 600
	NoActiveVector     Result = 601
	NoProposal         Result = 602
	AlreadyInitialized Result = 603
	NotInitialized     Result = 604
	InsufficientFunds  Result = 605
	WindowClosed       Result = 606
)

// Category returns the failure category for a code.
func (r Result) Category() Category {
	switch {
	case r == Success:
		return CategorySuccess
	case r >= 100 && r < 200:
		return CategoryAuthorization
	case r >= 200 && r < 300:
		return CategoryCapacity
	case r >= 300 && r < 400:
		return CategoryNotFound
	case r >= 400 && r < 500:
		return CategoryValidation
	case r >= 500 && r < 600:
		return CategoryArithmetic
	default:
		return CategoryState
	}
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r == Success
}

var names = map[Result]string{
	Success:            "success",
	NotOwner:           "notOwner",
	NotAdmin:           "notAdmin",
	NotOwnerOrAdmin:    "notOwnerOrAdmin",
	NotProposedOwner:   "notProposedOwner",
	MissingSigner:      "missingSigner",
	BadSignature:       "badSignature",
	UnknownSigner:      "unknownSigner",
	NotRedemptionAdmin: "notRedemptionAdmin",
	NotRedeemer:        "notRedeemer",
	RegistryFull:       "registryFull",
	VectorTableFull:    "vectorTableFull",
	AdminSetFull:       "adminSetFull",
	ApproverSetFull:    "approverSetFull",
	OfferNotFound:      "offerNotFound",
	VectorNotFound:     "vectorNotFound",
	RequestNotFound:    "requestNotFound",
	AdminNotFound:      "adminNotFound",
	ApproverNotFound:   "approverNotFound",
	TokenNotFound:      "tokenNotFound",
	BadFee:             "badFee",
	BadRatio:           "badRatio",
	BadWindow:          "badWindow",
	ExpiryInPast:       "expiryInPast",
	NonceMismatch:      "nonceMismatch",
	BadInterval:        "badInterval",
	BadPrice:           "badPrice",
	BadAmount:          "badAmount",
	NullIdentity:       "nullIdentity",
	DuplicateAdmin:     "duplicateAdmin",
	DuplicateApprover:  "duplicateApprover",
	SameTokenPair:      "sameTokenPair",
	RequestReplayed:    "requestReplayed",
	ArithmeticOverflow: "arithmeticOverflow",
	Halted:             "halted",
	NoActiveVector:     "noActiveVector",
	NoProposal:         "noProposal",
	AlreadyInitialized: "alreadyInitialized",
	NotInitialized:     "notInitialized",
	InsufficientFunds:  "insufficientFunds",
	WindowClosed:       "windowClosed",
}

var categoryNames = map[Category]string{
	CategorySuccess:       "success",
	CategoryAuthorization: "authorization",
	CategoryCapacity:      "capacity",
	CategoryNotFound:      "notFound",
	CategoryValidation:    "validation",
	CategoryArithmetic:    "arithmetic",
	CategoryState:         "state",
}

// String returns the stable wire name of the code.
func (r Result) String() string {
	if name, ok := names[r]; ok {
		return name
	}
	return "unknown"
}

// String returns the stable wire name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

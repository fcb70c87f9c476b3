package dialect

// IndexSupport describes which index options may be emitted.
type IndexSupport struct {
	Collate      bool
	Length       bool
	Parser       bool
	Concurrently bool
	Type         bool
	// Using is 0 when USING is unsupported, 1 when it follows the index
	// name and 2 when it follows the table name.
	Using int
}

// ConstraintSupport describes which constraint statements may be emitted.
type ConstraintSupport struct {
	Restrict       bool
	AddConstraint  bool
	DropConstraint bool
	Unique         bool
	Default        bool
	Check          bool
	ForeignKey     bool
	PrimaryKey     bool
}

// Supports is the capability descriptor consulted by statement generators.
// String-valued flags hold the SQL fragment to emit, empty when unsupported.
type Supports struct {
	Default        bool // DEFAULT keyword in VALUES
	DefaultValues  bool // INSERT ... DEFAULT VALUES
	ValuesEmpty    bool // INSERT ... VALUES ()
	LimitOnUpdate  bool
	OnDuplicateKey bool
	OrderNulls     bool
	Union          bool
	UnionAll       bool

	Ignore            string // INSERT IGNORE fragment
	IgnoreDuplicates  string
	UpdateOnDuplicate bool
	Upserts           bool
	ReturnValues      bool

	Lock                 bool
	LockOf               bool
	LockKey              bool
	LockOuterJoinFailure bool
	SkipLocked           bool
	ForShare             string // shared lock clause

	Index       IndexSupport
	Constraints ConstraintSupport

	Schemas               bool
	Transactions          bool
	Migrations            bool
	BulkDefault           bool
	IndexViaAlter         bool
	JoinTableDependent    bool
	GroupedLimit          bool
	DeferrableConstraints bool

	Numeric  bool
	Geometry bool
	JSON     bool
	Regexp   bool
	Arrays   bool
}

// AbstractSupports returns the capability defaults shared by every dialect.
// Dialects copy it and override what differs.
func AbstractSupports() Supports {
	return Supports{
		Default:        true,
		OnDuplicateKey: true,
		Union:          true,
		UnionAll:       true,
		Upserts:        true,
		Index: IndexSupport{
			Collate: true,
			Using:   1,
		},
		Constraints: ConstraintSupport{
			Restrict:       true,
			AddConstraint:  true,
			DropConstraint: true,
			Unique:         true,
			Check:          true,
			ForeignKey:     true,
			PrimaryKey:     true,
		},
		Transactions:       true,
		Migrations:         true,
		JoinTableDependent: true,
		GroupedLimit:       true,
	}
}

package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Malformed IR: the front-end produced something the verifier cannot resolve.
	IRInfo            Code = 1000
	IRUnknownBinding  Code = 1001
	IRUnbalancedScope Code = 1002
	IRInvalidDocument Code = 1003

	// Ownership discipline
	OwnInfo                       Code = 3000
	OwnUseOfMovedValue            Code = 3001
	OwnCannotMoveWhileBorrowed    Code = 3002
	OwnConflictingBorrow          Code = 3003
	OwnConflictingExclusiveBorrow Code = 3004
	OwnCannotMutateWhileBorrowed  Code = 3005
	OwnUseOfExpiredBorrow         Code = 3006
	OwnShapeMismatch              Code = 3007
	OwnImmutableBinding           Code = 3008
	OwnBorrowOutlivesOwner        Code = 3009

	IOLoadFileError Code = 4001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                   "Unknown error",
		IRInfo:                        "IR information",
		IRUnknownBinding:              "Unknown binding",
		IRUnbalancedScope:             "Scope exit without matching entry",
		IRInvalidDocument:             "Invalid IR document",
		OwnInfo:                       "Ownership information",
		OwnUseOfMovedValue:            "Use of moved value",
		OwnCannotMoveWhileBorrowed:    "Cannot move out while borrowed",
		OwnConflictingBorrow:          "Conflicting borrow",
		OwnConflictingExclusiveBorrow: "Conflicting exclusive borrow",
		OwnCannotMutateWhileBorrowed:  "Cannot mutate while borrowed",
		OwnUseOfExpiredBorrow:         "Use of expired borrow",
		OwnShapeMismatch:              "Pattern shape mismatch",
		OwnImmutableBinding:           "Binding is not mutable",
		OwnBorrowOutlivesOwner:        "Borrow outlives its owner",
		IOLoadFileError:               "I/O load file error",
		ObsInfo:                       "Observability information",
		ObsTimings:                    "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("OWN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

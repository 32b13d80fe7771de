package pipeline

import (
	"regexp"

	"passclean/internal/ddl"
	"passclean/internal/transformer/builtin"
)

// Raw input columns.
const (
	ColPassengerID = "PassengerId"
	ColName        = "Name"
	ColSex         = "Sex"
	ColAge         = "Age"
	ColSibSp       = "SibSp"
	ColParch       = "Parch"
	ColTicket      = "Ticket"
	ColFare        = "Fare"
	ColCabin       = "Cabin"
	ColEmbarked    = "Embarked"
	ColSurvived    = "Survived"
	ColPclass      = "Pclass"

	// ColHasCabin is derived during imputation, before Cabin is dropped.
	ColHasCabin = "Has_Cabin"
)

// Cleaned output columns.
const (
	OutPassengerClass  = "passenger_class"
	OutGender          = "gender"
	OutAge             = "age"
	OutSiblingsSpouses = "siblings_spouses"
	OutParentsChildren = "parents_children"
	OutFare            = "fare"
	OutPortEmbarked    = "port_embarked"
	OutSurvived        = "survived"
	OutHasCabin        = "has_cabin"
)

// RequiredColumns lists the input columns Clean insists on, in the order the
// source file conventionally carries them.
var RequiredColumns = []string{
	ColPassengerID, ColSurvived, ColPclass, ColName, ColSex, ColAge,
	ColSibSp, ColParch, ColTicket, ColFare, ColCabin, ColEmbarked,
}

// DroppedColumns are removed in stage 2.
var DroppedColumns = []string{ColPassengerID, ColName, ColTicket, ColCabin}

// OutputColumns is the cleaned schema, in output order.
var OutputColumns = []string{
	OutPassengerClass, OutGender, OutAge, OutSiblingsSpouses,
	OutParentsChildren, OutFare, OutPortEmbarked, OutSurvived, OutHasCabin,
}

// Renames maps surviving input columns to their output names.
var Renames = map[string]string{
	ColPclass:   OutPassengerClass,
	ColSex:      OutGender,
	ColAge:      OutAge,
	ColSibSp:    OutSiblingsSpouses,
	ColParch:    OutParentsChildren,
	ColFare:     OutFare,
	ColEmbarked: OutPortEmbarked,
	ColSurvived: OutSurvived,
	ColHasCabin: OutHasCabin,
}

// OutputTypes maps each output column to its logical type.
var OutputTypes = map[string]string{
	OutPassengerClass:  ddl.TypeInt8,
	OutGender:          ddl.TypeString,
	OutAge:             ddl.TypeInt8,
	OutSiblingsSpouses: ddl.TypeInt8,
	OutParentsChildren: ddl.TypeInt8,
	OutFare:            ddl.TypeFloat64,
	OutPortEmbarked:    ddl.TypeString,
	OutSurvived:        ddl.TypeInt8,
	OutHasCabin:        ddl.TypeInt8,
}

// Genders is the gender domain after case folding.
var Genders = []string{"male", "female"}

var portCode = regexp.MustCompile(`^[A-Z]$`)

// narrowTypes is the Coerce configuration for stage 5.
func narrowTypes() map[string]string {
	out := make(map[string]string, len(OutputTypes))
	for col, typ := range OutputTypes {
		switch typ {
		case ddl.TypeInt8:
			out[col] = builtin.TypeInt8
		case ddl.TypeFloat64:
			out[col] = builtin.TypeFloat64
		}
	}
	return out
}

// OutputTableDef describes the cleaned table for SQL sinks. No column is
// nullable; the pipeline guarantees it.
func OutputTableDef(fqn string) ddl.TableDef {
	td := ddl.TableDef{FQN: fqn, Columns: make([]ddl.ColumnDef, len(OutputColumns))}
	for i, c := range OutputColumns {
		td.Columns[i] = ddl.ColumnDef{Name: c, Type: OutputTypes[c]}
	}
	return td
}

// Package pipeline cleans a raw passenger table into the fixed output schema.
//
// Clean runs six stages in a fixed order, each consuming the previous stage's
// output:
//
//  1. impute    Age median, Embarked mode, Has_Cabin flag from Cabin
//  2. drop      PassengerId, Name, Ticket, Cabin
//  3. normalize Sex lower case, Embarked upper case
//  4. rename    to snake_case output names, in output column order
//  5. narrow    count and flag columns to int8, fare to float64
//  6. dedup     full-row duplicates, first occurrence wins
//
// The result is then checked for residual nulls and domain violations. Clean
// performs no I/O; progress is reported through a transformer.Observer and the
// returned Report.
package pipeline

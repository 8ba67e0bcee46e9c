// Package batch applies YAML documents of create, update and delete steps
// through the mutation engine.
//
// A document names a default caller and a list of steps:
//
//	as: 1
//	steps:
//	  - create: base_category
//	    with: {book_id: 1, name: Rent, color: red}
//	  - update: record
//	    id: 9
//	    set:
//	      memo: !clear
//	      amount: "12.50"
//	  - delete: book
//	    id: 4
//
// The !clear tag must be used in block style, as above. A plain null leaves
// the field unchanged.
//
// Every step produces one Result. A failing step does not stop the ones after
// it; there is no transaction spanning steps.
package batch

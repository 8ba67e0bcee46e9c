package model

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform snake -text -output kind_enumer.go

// Kind identifies the resource a mutation targets.
type Kind int

const (
	KindBook Kind = iota
	KindBaseCategory
	KindSubCategory
	KindRecord
	KindUser
	KindConnect
	KindBookRole
	// KindAsset is only ever referenced by records; the engine does not
	// mutate assets.
	KindAsset
)

// Table returns the table holding rows of this kind.
func (k Kind) Table() string {
	switch k {
	case KindBook:
		return Book{}.TableName()
	case KindBaseCategory:
		return BaseCategory{}.TableName()
	case KindSubCategory:
		return SubCategory{}.TableName()
	case KindRecord:
		return Record{}.TableName()
	case KindUser:
		return User{}.TableName()
	case KindConnect:
		return Connect{}.TableName()
	case KindBookRole:
		return RoleAssignment{}.TableName()
	case KindAsset:
		return Asset{}.TableName()
	default:
		return ""
	}
}

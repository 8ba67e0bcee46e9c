package mutation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

const recordScope = "SELECT r.id, r.book_id FROM records r WHERE r.id = @id"

// reachableSubCategory passes when the sub-category bound to arg belongs to
// the scope's book or to a global base category.
func reachableSubCategory(arg string) string {
	return "SELECT 1 FROM sub_categories sc JOIN base_categories c ON c.id = sc.base_category_id " +
		"JOIN scope s ON c.book_id = s.book_id OR c.book_id IS NULL WHERE sc.id = @" + arg
}

func assetInBook(arg string) string {
	return "SELECT 1 FROM assets a JOIN scope s ON a.book_id = s.book_id WHERE a.id = @" + arg
}

const (
	connectsExist = "SELECT 1 WHERE (SELECT COUNT(*) FROM connects c WHERE c.id IN @connect_ids) = @connect_count"

	linkConnects = "INSERT INTO record_connects (record_id, connect_id) " +
		"SELECT a.id, c.id FROM applied a JOIN connects c ON c.id IN @connect_ids"
	unlinkConnects = "DELETE FROM record_connects WHERE record_id IN (SELECT id FROM applied)"
)

// NewRecord creates a transaction record in a book.
type NewRecord struct {
	BookID        int64           `yaml:"book_id" json:"book_id"`
	SubCategoryID int64           `yaml:"sub_category_id" json:"sub_category_id"`
	AssetID       *int64          `yaml:"asset_id" json:"asset_id"`
	Memo          *string         `yaml:"memo" json:"memo"`
	Amount        decimal.Decimal `yaml:"amount" json:"amount"`
	OccurredAt    time.Time       `yaml:"occurred_at" json:"occurred_at"`
	ConnectIDs    []int64         `yaml:"connect_ids" json:"connect_ids"`
}

func (NewRecord) Kind() model.Kind { return model.KindRecord }

func (p NewRecord) create(_ *Engine, who identity.Identity) (*statement, error) {
	st := newStatement(model.KindRecord, audit.ActionCreate, who, 0)
	st.scope = "SELECT b.id, b.id AS book_id FROM books b WHERE b.id = @book_id"
	st.requireWriter()

	st.addRef(model.KindSubCategory, reachableSubCategory("sub_category_id"))
	if p.AssetID != nil {
		st.addRef(model.KindAsset, assetInBook("asset_id"))
	}
	connects := uniqueIDs(p.ConnectIDs)
	if len(connects) > 0 {
		st.addRef(model.KindConnect, connectsExist)
		st.after = append(st.after, followUp{sql: linkConnects, junction: true})
	}

	occurred := p.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	st.args["book_id"] = p.BookID
	st.args["sub_category_id"] = p.SubCategoryID
	st.args["asset_id"] = nullable(p.AssetID)
	st.args["memo"] = nullable(p.Memo)
	st.args["amount"] = p.Amount
	st.args["occurred_at"] = occurred.UTC()
	st.args["connect_ids"] = connects
	st.args["connect_count"] = int64(len(connects))
	st.write = write{
		sql: "INSERT INTO records (book_id, sub_category_id, asset_id, memo, amount, occurred_at) " +
			"SELECT s.book_id, @sub_category_id, @asset_id, @memo, @amount, @occurred_at",
		from: "scope s",
	}
	return st, nil
}

// RecordPatch updates a record. Only references that are Set are checked
// again; references left Unchanged are kept as they are even if the caller
// could no longer reach them.
type RecordPatch struct {
	SubCategoryID field.Update[int64]           `yaml:"sub_category_id" json:"sub_category_id"`
	AssetID       field.Update[int64]           `yaml:"asset_id" json:"asset_id"`
	Memo          field.Update[string]          `yaml:"memo" json:"memo"`
	Amount        field.Update[decimal.Decimal] `yaml:"amount" json:"amount"`
	OccurredAt    field.Update[time.Time]       `yaml:"occurred_at" json:"occurred_at"`
	// ConnectIDs replaces the record's connects. Clear removes them all.
	ConnectIDs field.Update[[]int64] `yaml:"connect_ids" json:"connect_ids"`
}

func (RecordPatch) Kind() model.Kind { return model.KindRecord }

func (p RecordPatch) IsEmpty() bool {
	return p.SubCategoryID.IsUnchanged() &&
		p.AssetID.IsUnchanged() &&
		p.Memo.IsUnchanged() &&
		p.Amount.IsUnchanged() &&
		p.OccurredAt.IsUnchanged() &&
		p.ConnectIDs.IsUnchanged()
}

func (p RecordPatch) update(_ *Engine, who identity.Identity, id int64) (*statement, error) {
	var as field.Assignments
	if err := field.Collect(&as, field.Column{Name: "sub_category_id"}, p.SubCategoryID); err != nil {
		return nil, err
	}
	if err := field.Collect(&as, field.Column{Name: "asset_id", Nullable: true}, p.AssetID); err != nil {
		return nil, err
	}
	if err := field.Collect(&as, field.Column{Name: "memo", Nullable: true}, p.Memo); err != nil {
		return nil, err
	}
	if err := field.Collect(&as, field.Column{Name: "amount"}, p.Amount); err != nil {
		return nil, err
	}
	if err := field.Collect(&as, field.Column{Name: "occurred_at"}, p.OccurredAt); err != nil {
		return nil, err
	}

	st := newStatement(model.KindRecord, audit.ActionUpdate, who, id)
	st.scope = recordScope
	st.requireWriter()

	if p.SubCategoryID.IsSet() {
		st.addRef(model.KindSubCategory, reachableSubCategory("set_sub_category_id"))
	}
	if p.AssetID.IsSet() {
		st.addRef(model.KindAsset, assetInBook("set_asset_id"))
	}
	if !p.ConnectIDs.IsUnchanged() {
		ids, _ := p.ConnectIDs.Value()
		connects := uniqueIDs(ids)
		st.args["connect_ids"] = connects
		st.args["connect_count"] = int64(len(connects))
		st.after = append(st.after, followUp{sql: unlinkConnects, junction: true})
		if len(connects) > 0 {
			st.addRef(model.KindConnect, connectsExist)
			st.after = append(st.after, followUp{sql: linkConnects, junction: true})
		}
	}

	st.setColumns("records", as)
	return st, nil
}

func deleteRecord(who identity.Identity, id int64) *statement {
	st := newStatement(model.KindRecord, audit.ActionDelete, who, id)
	st.scope = recordScope
	st.requireOwner()
	st.deleteTarget("records")
	return st
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

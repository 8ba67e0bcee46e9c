package batch

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
	"github.com/ledgerbook/ledger-in-go/pkg/mutation"
)

// Document is a parsed batch file.
type Document struct {
	// As is the default caller. Zero runs the steps anonymously.
	As    int64  `yaml:"as"`
	Steps []Step `yaml:"steps"`
}

// Step is one mutation. Exactly one of Create, Update or Delete names the
// kind it acts on.
type Step struct {
	Create string    `yaml:"create,omitempty"`
	Update string    `yaml:"update,omitempty"`
	Delete string    `yaml:"delete,omitempty"`
	ID     int64     `yaml:"id,omitempty"`
	As     *int64    `yaml:"as,omitempty"`
	With   yaml.Node `yaml:"with,omitempty"`
	Set    yaml.Node `yaml:"set,omitempty"`

	action  audit.Action
	kind    model.Kind
	payload mutation.Payload
	patch   mutation.Patch
}

// Action reports whether the step creates, updates or deletes.
func (s Step) Action() audit.Action { return s.action }

// Kind is the entity kind the step acts on.
func (s Step) Kind() model.Kind { return s.kind }

func (s Step) String() string {
	if s.action == audit.ActionCreate {
		return fmt.Sprintf("%s %s", s.action, s.kind)
	}
	return fmt.Sprintf("%s %s %d", s.action, s.kind, s.ID)
}

var errNoAction = errors.New("step needs exactly one of create, update or delete")

// Parse reads a document and decodes every step into its payload or patch.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}

	for i := range doc.Steps {
		if err := doc.Steps[i].compile(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &doc, nil
}

func (s *Step) compile() error {
	var name string
	n := 0
	for action, k := range map[audit.Action]string{
		audit.ActionCreate: s.Create,
		audit.ActionUpdate: s.Update,
		audit.ActionDelete: s.Delete,
	} {
		if k != "" {
			s.action, name = action, k
			n++
		}
	}
	if n != 1 {
		return errNoAction
	}

	kind, err := model.KindString(name)
	if err != nil {
		return fmt.Errorf("unknown kind %q", name)
	}
	s.kind = kind

	switch s.action {
	case audit.ActionCreate:
		s.payload, err = decodePayload(kind, &s.With)
	case audit.ActionUpdate:
		if s.ID == 0 {
			return fmt.Errorf("update %s: id is required", kind)
		}
		s.patch, err = decodePatch(kind, &s.Set)
	case audit.ActionDelete:
		if s.ID == 0 {
			return fmt.Errorf("delete %s: id is required", kind)
		}
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", s.action, kind, err)
	}
	return nil
}

func decodePayload(kind model.Kind, node *yaml.Node) (mutation.Payload, error) {
	switch kind {
	case model.KindBook:
		return decode[mutation.NewBook](node)
	case model.KindBaseCategory:
		return decode[mutation.NewBaseCategory](node)
	case model.KindSubCategory:
		return decode[mutation.NewSubCategory](node)
	case model.KindRecord:
		return decode[mutation.NewRecord](node)
	case model.KindUser:
		return decode[mutation.NewUser](node)
	case model.KindConnect:
		return decode[mutation.NewConnect](node)
	case model.KindBookRole:
		return decode[mutation.NewBookRole](node)
	default:
		return nil, fmt.Errorf("%s cannot be created", kind)
	}
}

func decodePatch(kind model.Kind, node *yaml.Node) (mutation.Patch, error) {
	switch kind {
	case model.KindBook:
		return decode[mutation.BookPatch](node)
	case model.KindBaseCategory:
		return decode[mutation.BaseCategoryPatch](node)
	case model.KindSubCategory:
		return decode[mutation.SubCategoryPatch](node)
	case model.KindRecord:
		return decode[mutation.RecordPatch](node)
	case model.KindUser:
		return decode[mutation.UserPatch](node)
	case model.KindConnect:
		return decode[mutation.ConnectPatch](node)
	case model.KindBookRole:
		return decode[mutation.BookRolePatch](node)
	default:
		return nil, fmt.Errorf("%s cannot be updated", kind)
	}
}

// decode fills a T from node. A missing node leaves T at its zero value,
// which for a patch means every field is Unchanged.
func decode[T any](node *yaml.Node) (T, error) {
	var v T
	if node.Kind == 0 {
		return v, nil
	}
	if err := node.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

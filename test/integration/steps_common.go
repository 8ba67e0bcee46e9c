package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cucumber/godog"

	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
	"github.com/ledgerbook/ledger-in-go/pkg/mutation"
	"github.com/ledgerbook/ledger-in-go/pkg/outcome"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc *TestContext

	users      map[string]int64
	books      map[string]int64
	categories map[string]int64

	last     outcome.Outcome
	outcomes []outcome.Outcome
	stamp    time.Time
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:         tc,
		users:      make(map[string]int64),
		books:      make(map[string]int64),
		categories: make(map[string]int64),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Background steps
	sc.Step(`^a ledger store is running$`, s.aLedgerStoreIsRunning)
	sc.Step(`^user "([^"]*)" is registered$`, s.userIsRegistered)
	sc.Step(`^"([^"]*)" owns the book "([^"]*)"$`, s.ownsTheBook)
	sc.Step(`^"([^"]*)" is (viewer|editor|owner) of "([^"]*)"$`, s.hasRoleOn)

	// Mutation steps
	sc.Step(`^"([^"]*)" creates the base category "([^"]*)" in "([^"]*)"$`, s.createsBaseCategory)
	sc.Step(`^"([^"]*)" creates the base category "([^"]*)" with color "([^"]*)" in "([^"]*)"$`, s.createsColoredBaseCategory)
	sc.Step(`^"([^"]*)" renames the base category "([^"]*)" to "([^"]*)"$`, s.renamesBaseCategory)
	sc.Step(`^"([^"]*)" deletes the base category "([^"]*)"$`, s.deletesBaseCategory)
	sc.Step(`^"([^"]*)" sends an empty update for the base category "([^"]*)"$`, s.sendsEmptyUpdate)
	sc.Step(`^"([^"]*)" renames the book with id (-?\d+) to "([^"]*)"$`, s.renamesBookByID)
	sc.Step(`^"([^"]*)" deletes the book with id (-?\d+)$`, s.deletesBookByID)
	sc.Step(`^(\d+) concurrent attempts by "([^"]*)" to create the base category "([^"]*)" in "([^"]*)"$`, s.concurrentCreates)
	sc.Step(`^"([^"]*)" and "([^"]*)" concurrently rename "([^"]*)" and "([^"]*)" to "([^"]*)"$`, s.concurrentRenames)
	sc.Step(`^"([^"]*)" and "([^"]*)" concurrently step down as owners of "([^"]*)"$`, s.concurrentStepDowns)

	// Outcome steps
	sc.Step(`^the outcome should be "([^"]*)"$`, s.theOutcomeShouldBe)
	sc.Step(`^(\d+) of the attempts should be "([^"]*)"$`, s.attemptsShouldBe)
	sc.Step(`^the base category "([^"]*)" should have color "([^"]*)"$`, s.baseCategoryShouldHaveColor)
	sc.Step(`^the base category "([^"]*)" should not have changed$`, s.baseCategoryShouldNotHaveChanged)
	sc.Step(`^the book "([^"]*)" should have (\d+) owners?$`, s.bookShouldHaveOwners)
}

// Background steps

func (s *StepsContext) aLedgerStoreIsRunning() error {
	return s.tc.RawDB.Ping()
}

func (s *StepsContext) userIsRegistered(name string) error {
	o := s.tc.Engine.AttemptCreate(context.Background(), identity.Anonymous(),
		mutation.NewUser{Name: name, Password: name + "-password"})
	if err := o.Err(); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	s.users[name] = o.ID
	return nil
}

func (s *StepsContext) who(name string) (identity.Identity, error) {
	id, ok := s.users[name]
	if !ok {
		return identity.Identity{}, fmt.Errorf("unknown user %q", name)
	}
	return identity.ForUser(id), nil
}

func (s *StepsContext) ownsTheBook(user, book string) error {
	who, err := s.who(user)
	if err != nil {
		return err
	}
	o := s.tc.Engine.AttemptCreate(context.Background(), who, mutation.NewBook{Name: book})
	if err := o.Err(); err != nil {
		return fmt.Errorf("create book %s: %w", book, err)
	}
	s.books[book] = o.ID
	return nil
}

func (s *StepsContext) hasRoleOn(user, role, book string) error {
	userID, ok := s.users[user]
	if !ok {
		return fmt.Errorf("unknown user %q", user)
	}
	r, err := model.RoleString(role)
	if err != nil {
		return err
	}

	var ownerID int64
	if err := s.tc.DB.Raw("SELECT user_id FROM book_roles WHERE book_id = ? AND role = 'owner' ORDER BY id LIMIT 1",
		s.books[book]).Scan(&ownerID).Error; err != nil {
		return err
	}
	o := s.tc.Engine.AttemptCreate(context.Background(), identity.ForUser(ownerID),
		mutation.NewBookRole{BookID: s.books[book], UserID: userID, Role: r})
	return o.Err()
}

// Mutation steps

func (s *StepsContext) createsBaseCategory(user, name, book string) error {
	return s.createBaseCategory(user, name, nil, book)
}

func (s *StepsContext) createsColoredBaseCategory(user, name, color, book string) error {
	return s.createBaseCategory(user, name, &color, book)
}

func (s *StepsContext) createBaseCategory(user, name string, color *string, book string) error {
	who, err := s.who(user)
	if err != nil {
		return err
	}
	s.last = s.tc.Engine.AttemptCreate(context.Background(), who,
		mutation.NewBaseCategory{BookID: s.books[book], Name: name, Color: color})
	if s.last.OK() {
		s.categories[name] = s.last.ID
	}
	return nil
}

func (s *StepsContext) renamesBaseCategory(user, from, to string) error {
	who, err := s.who(user)
	if err != nil {
		return err
	}
	id := s.categories[from]
	s.last = s.tc.Engine.AttemptUpdate(context.Background(), who, id, mutation.BaseCategoryPatch{Name: field.Set(to)})
	if s.last.OK() {
		s.categories[to] = id
	}
	return nil
}

func (s *StepsContext) deletesBaseCategory(user, name string) error {
	who, err := s.who(user)
	if err != nil {
		return err
	}
	s.last = s.tc.Engine.AttemptDelete(context.Background(), model.KindBaseCategory, who, s.categories[name])
	return nil
}

func (s *StepsContext) sendsEmptyUpdate(user, name string) error {
	who, err := s.who(user)
	if err != nil {
		return err
	}
	stamp, err := s.updatedAt(name)
	if err != nil {
		return err
	}
	s.stamp = stamp
	s.last = s.tc.Engine.AttemptUpdate(context.Background(), who, s.categories[name], mutation.BaseCategoryPatch{})
	return nil
}

func (s *StepsContext) renamesBookByID(user string, id int64, name string) error {
	who, err := s.who(user)
	if err != nil {
		return err
	}
	s.last = s.tc.Engine.AttemptUpdate(context.Background(), who, id, mutation.BookPatch{Name: field.Set(name)})
	return nil
}

func (s *StepsContext) deletesBookByID(user string, id int64) error {
	who, err := s.who(user)
	if err != nil {
		return err
	}
	s.last = s.tc.Engine.AttemptDelete(context.Background(), model.KindBook, who, id)
	return nil
}

func (s *StepsContext) concurrentCreates(n int, user, name, book string) error {
	who, err := s.who(user)
	if err != nil {
		return err
	}
	payload := mutation.NewBaseCategory{BookID: s.books[book], Name: name}

	s.race(n, func(int) outcome.Outcome {
		return s.tc.Engine.AttemptCreate(context.Background(), who, payload)
	})
	return nil
}

func (s *StepsContext) concurrentRenames(first, second, from1, from2, to string) error {
	callers := make([]identity.Identity, 2)
	for i, name := range []string{first, second} {
		who, err := s.who(name)
		if err != nil {
			return err
		}
		callers[i] = who
	}
	ids := []int64{s.categories[from1], s.categories[from2]}

	s.race(2, func(i int) outcome.Outcome {
		return s.tc.Engine.AttemptUpdate(context.Background(), callers[i], ids[i], mutation.BaseCategoryPatch{Name: field.Set(to)})
	})
	for i, o := range s.outcomes {
		if o.OK() {
			s.categories[to] = ids[i]
		}
	}
	return nil
}

func (s *StepsContext) concurrentStepDowns(first, second, book string) error {
	callers := make([]identity.Identity, 2)
	assignments := make([]int64, 2)
	for i, name := range []string{first, second} {
		who, err := s.who(name)
		if err != nil {
			return err
		}
		callers[i] = who
		if err := s.tc.DB.Raw("SELECT id FROM book_roles WHERE book_id = ? AND user_id = ?",
			s.books[book], who.UserID).Scan(&assignments[i]).Error; err != nil {
			return err
		}
	}

	s.race(2, func(i int) outcome.Outcome {
		return s.tc.Engine.AttemptUpdate(context.Background(), callers[i], assignments[i],
			mutation.BookRolePatch{Role: field.Set(model.RoleEditor)})
	})
	return nil
}

// race runs attempt n times at once and keeps the outcomes in order.
func (s *StepsContext) race(n int, attempt func(i int) outcome.Outcome) {
	s.outcomes = make([]outcome.Outcome, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			s.outcomes[i] = attempt(i)
		}(i)
	}
	close(start)
	wg.Wait()
}

// Outcome steps

func (s *StepsContext) theOutcomeShouldBe(expected string) error {
	if got := s.last.Status.String(); got != expected {
		return fmt.Errorf("expected outcome %s, got %s", expected, s.last)
	}
	return nil
}

func (s *StepsContext) attemptsShouldBe(n int, expected string) error {
	count := 0
	for _, o := range s.outcomes {
		if o.Status.String() == expected {
			count++
		}
	}
	if count != n {
		return fmt.Errorf("expected %d attempts to be %s, got %d of %v", n, expected, count, s.outcomes)
	}
	return nil
}

func (s *StepsContext) baseCategoryShouldHaveColor(name, color string) error {
	var c model.BaseCategory
	if err := s.tc.DB.First(&c, s.categories[name]).Error; err != nil {
		return err
	}
	if c.Name != name {
		return fmt.Errorf("expected name %q, got %q", name, c.Name)
	}
	if c.Color == nil || *c.Color != color {
		return fmt.Errorf("expected color %q, got %v", color, c.Color)
	}
	return nil
}

func (s *StepsContext) baseCategoryShouldNotHaveChanged(name string) error {
	stamp, err := s.updatedAt(name)
	if err != nil {
		return err
	}
	if !stamp.Equal(s.stamp) {
		return fmt.Errorf("updated_at moved from %s to %s", s.stamp, stamp)
	}
	return nil
}

func (s *StepsContext) bookShouldHaveOwners(book string, n int) error {
	var owners int64
	if err := s.tc.DB.Raw("SELECT COUNT(*) FROM book_roles WHERE book_id = ? AND role = 'owner'",
		s.books[book]).Scan(&owners).Error; err != nil {
		return err
	}
	if owners != int64(n) {
		return fmt.Errorf("expected %d owners of %s, got %d", n, book, owners)
	}
	return nil
}

func (s *StepsContext) updatedAt(name string) (time.Time, error) {
	var stamp time.Time
	err := s.tc.DB.Raw("SELECT updated_at FROM base_categories WHERE id = ?", s.categories[name]).Scan(&stamp).Error
	return stamp, err
}

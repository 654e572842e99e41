package querytext

import (
	"fmt"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/ir"
	"github.com/roach88/chainq/internal/querymodel"
)

// Clause kinds as they appear in snapshots and scenario assertions.
const (
	KindMainFrom       = "main_from"
	KindAdditionalFrom = "additional_from"
	KindJoin           = "join"
	KindWhere          = "where"
	KindOrderBy        = "order_by"
	KindSelect         = "select"
	KindGroup          = "group"
)

// ClauseKind names the kind of c.
func ClauseKind(c querymodel.Clause) string {
	switch c.(type) {
	case *querymodel.MainFromClause:
		return KindMainFrom
	case *querymodel.AdditionalFromClause:
		return KindAdditionalFrom
	case *querymodel.JoinClause:
		return KindJoin
	case *querymodel.WhereClause:
		return KindWhere
	case *querymodel.OrderByClause:
		return KindOrderBy
	case *querymodel.SelectClause:
		return KindSelect
	case *querymodel.GroupClause:
		return KindGroup
	default:
		return fmt.Sprintf("%T", c)
	}
}

// Snapshot returns a structural description of m built from IR values.
//
// Expressions are stored in their Format text. Each clause records the kind
// of its predecessor, so a snapshot also pins the predecessor chain.
//
//	{
//	  "main_from": {"identifier": "s", "item_type": "Student", "source": "students", "joins": [...]},
//	  "body_clauses": [{"kind": "where", "previous": "main_from", "predicate": "([s].Age > 18)"}],
//	  "terminal": {"kind": "select", "previous": "where", "selector": "[s].Name", "result_modifications": ["Take(3)"]}
//	}
func Snapshot(m *querymodel.QueryModel) ir.IRObject {
	s := &snapshotter{froms: make(map[querymodel.FromClause]ir.IRObject)}
	s.Self = s
	m.Accept(s)
	return s.out
}

// MarshalSnapshot encodes Snapshot(m) as canonical JSON.
func MarshalSnapshot(m *querymodel.QueryModel) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot snapshot nil query model")
	}
	return ir.MarshalCanonical(Snapshot(m))
}

type snapshotter struct {
	querymodel.VisitorBase

	out   ir.IRObject
	body  ir.IRArray
	froms map[querymodel.FromClause]ir.IRObject
}

func (s *snapshotter) VisitQueryModel(m *querymodel.QueryModel) {
	s.out = ir.IRObject{}
	s.body = ir.IRArray{}
	s.VisitorBase.VisitQueryModel(m)
	s.out["body_clauses"] = s.body
}

func (s *snapshotter) VisitMainFromClause(c *querymodel.MainFromClause, m *querymodel.QueryModel) {
	obj := ir.IRObject{
		"identifier": ir.IRString(c.Identifier.Name),
		"item_type":  ir.IRString(c.Identifier.Type),
		"source":     ir.IRString(expression.Format(c.QuerySource)),
		"joins":      ir.IRArray{},
	}
	s.froms[c] = obj
	s.out["main_from"] = obj
	s.VisitorBase.VisitMainFromClause(c, m)
}

func (s *snapshotter) VisitAdditionalFromClause(c *querymodel.AdditionalFromClause, m *querymodel.QueryModel, index int) {
	obj := clauseObject(c)
	obj["identifier"] = ir.IRString(c.Identifier.Name)
	obj["item_type"] = ir.IRString(c.Identifier.Type)
	obj["from_expression"] = ir.IRString(expression.Format(c.FromExpression))
	obj["joins"] = ir.IRArray{}
	s.froms[c] = obj
	s.body = append(s.body, obj)
	s.VisitorBase.VisitAdditionalFromClause(c, m, index)
}

func (s *snapshotter) VisitJoinClause(c *querymodel.JoinClause, m *querymodel.QueryModel, from querymodel.FromClause, index int) {
	obj := clauseObject(c)
	obj["identifier"] = ir.IRString(c.Identifier.Name)
	obj["item_type"] = ir.IRString(c.Identifier.Type)
	obj["inner_sequence"] = ir.IRString(expression.Format(c.InnerSequence))
	obj["outer_key"] = ir.IRString(expression.Format(c.OuterKeySelector))
	obj["inner_key"] = ir.IRString(expression.Format(c.InnerKeySelector))

	owner := s.froms[from]
	joins, _ := owner["joins"].(ir.IRArray)
	owner["joins"] = append(joins, obj)
}

func (s *snapshotter) VisitWhereClause(c *querymodel.WhereClause, m *querymodel.QueryModel, index int) {
	obj := clauseObject(c)
	obj["predicate"] = ir.IRString(expression.Format(c.Predicate))
	s.body = append(s.body, obj)
}

func (s *snapshotter) VisitOrderByClause(c *querymodel.OrderByClause, m *querymodel.QueryModel, index int) {
	orderings := make(ir.IRArray, 0, c.Orderings.Len())
	for _, o := range c.Orderings.All() {
		orderings = append(orderings, ir.IRObject{
			"expression": ir.IRString(expression.Format(o.Expression)),
			"direction":  ir.IRString(string(o.Direction)),
		})
	}
	obj := clauseObject(c)
	obj["orderings"] = orderings
	s.body = append(s.body, obj)
}

func (s *snapshotter) VisitSelectClause(c *querymodel.SelectClause, m *querymodel.QueryModel) {
	mods := make(ir.IRArray, 0, c.ResultModifications.Len())
	for _, r := range c.ResultModifications.All() {
		mods = append(mods, ir.IRString(FormatModification(r)))
	}
	obj := clauseObject(c)
	obj["selector"] = ir.IRString(expression.Format(c.Selector))
	obj["result_modifications"] = mods
	s.out["terminal"] = obj
}

func (s *snapshotter) VisitGroupClause(c *querymodel.GroupClause, m *querymodel.QueryModel) {
	obj := clauseObject(c)
	obj["key_selector"] = ir.IRString(expression.Format(c.KeySelector))
	obj["element_selector"] = ir.IRString(expression.Format(c.ElementSelector))
	s.out["terminal"] = obj
}

func clauseObject(c querymodel.Clause) ir.IRObject {
	obj := ir.IRObject{"kind": ir.IRString(ClauseKind(c))}
	if prev := c.Previous(); prev != nil {
		obj["previous"] = ir.IRString(ClauseKind(prev))
	} else {
		obj["previous"] = ir.IRNull{}
	}
	return obj
}

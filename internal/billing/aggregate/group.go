// Package aggregate groups unbilled orders into statements.
package aggregate

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/billing/domain"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
)

type lineKey struct {
	drink string
	price int64
}

type partition struct {
	statement domain.Statement
	lines     map[lineKey]int
	first     orderdomain.Order
	latest    orderdomain.Order
}

// Group partitions orders by billing subject and merges lines of the same
// drink name at the same unit price. Members come first ordered by id, then
// events ordered by label. Lines are ordered by drink name, then price.
func Group(orders []orderdomain.Order) []domain.Statement {
	sorted := make([]orderdomain.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	members := map[snowflake.ID]*partition{}
	events := map[string]*partition{}
	for _, order := range sorted {
		var p *partition
		if order.IsEventOrder() {
			label := order.EventLabel()
			p = events[label]
			if p == nil {
				p = newPartition(order)
				p.statement.SubjectType = orderdomain.SubjectEvent
				p.statement.EventLabel = label
				events[label] = p
			}
		} else {
			p = members[order.MemberID]
			if p == nil {
				p = newPartition(order)
				p.statement.SubjectType = orderdomain.SubjectMember
				p.statement.MemberID = order.MemberID
				members[order.MemberID] = p
			}
		}
		p.add(order)
	}

	out := make([]domain.Statement, 0, len(members)+len(events))
	memberIDs := make([]snowflake.ID, 0, len(members))
	for id := range members {
		memberIDs = append(memberIDs, id)
	}
	sort.Slice(memberIDs, func(i, j int) bool { return memberIDs[i] < memberIDs[j] })
	for _, id := range memberIDs {
		p := members[id]
		// Member statements show the most recent name snapshot.
		p.statement.DisplayName = p.latest.MemberName
		out = append(out, p.finish())
	}

	labels := make([]string, 0, len(events))
	for label := range events {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		p := events[label]
		// Events show whoever booked first; the name is not part of the key.
		p.statement.DisplayName = p.first.MemberName
		out = append(out, p.finish())
	}
	return out
}

func newPartition(first orderdomain.Order) *partition {
	return &partition{lines: map[lineKey]int{}, first: first}
}

func (p *partition) add(order orderdomain.Order) {
	p.latest = order
	key := lineKey{drink: order.DrinkName, price: order.UnitPriceCents}
	idx, ok := p.lines[key]
	if !ok {
		idx = len(p.statement.Items)
		p.lines[key] = idx
		p.statement.Items = append(p.statement.Items, domain.LineItem{
			DrinkName:      order.DrinkName,
			UnitPriceCents: order.UnitPriceCents,
		})
	}
	item := &p.statement.Items[idx]
	item.Quantity += order.Quantity
	item.SubtotalCents += order.TotalCents
	item.OrderIDs = append(item.OrderIDs, order.ID)
}

func (p *partition) finish() domain.Statement {
	items := p.statement.Items
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DrinkName != items[j].DrinkName {
			return items[i].DrinkName < items[j].DrinkName
		}
		return items[i].UnitPriceCents < items[j].UnitPriceCents
	})
	var total int64
	for _, item := range items {
		total += item.SubtotalCents
	}
	p.statement.TotalCents = total
	return p.statement
}

// Totals sums drink totals per subject type.
func Totals(statements []domain.Statement) map[orderdomain.SubjectType]int64 {
	totals := map[orderdomain.SubjectType]int64{}
	for _, s := range statements {
		totals[s.SubjectType] += s.TotalCents
	}
	return totals
}

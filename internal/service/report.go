package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"
)

const topProductLimit = 10

var reportStatuses = []model.OrderStatus{
	model.OrderAwaitingPayment,
	model.OrderProcessing,
	model.OrderShipped,
	model.OrderCompleted,
	model.OrderCancelled,
}

type ReportService interface {
	Sales(ctx context.Context, filter *dto.ReportFilter) (*dto.SalesReport, error)
}

type reportServiceImpl struct {
	orderRepo repository.OrderRepository
}

func NewReportService(orderRepo repository.OrderRepository) ReportService {
	return &reportServiceImpl{orderRepo: orderRepo}
}

// Sales aggregates orders created in the range. Revenue, items and the
// top products only count COMPLETED orders.
func (s *reportServiceImpl) Sales(ctx context.Context, filter *dto.ReportFilter) (*dto.SalesReport, error) {
	from, to, err := parseDayRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}

	f := repository.OrderFilter{From: from, To: to}
	if filter.Status != "" {
		status, ok := model.ParseOrderStatus(strings.ToUpper(filter.Status))
		if !ok {
			return nil, apperror.InvalidRequest("unknown order status")
		}
		f.Status = status
	}

	orders, err := s.orderRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	report := &dto.SalesReport{
		Daily:           []dto.DailyRevenue{},
		TopProducts:     []dto.TopProduct{},
		StatusBreakdown: []dto.StatusCount{},
		Orders:          orders,
	}

	counts := make(map[model.OrderStatus]int)
	daily := make(map[string]*dto.DailyRevenue)
	products := make(map[uint]*dto.TopProduct)

	for _, o := range orders {
		counts[o.Status]++
		report.Summary.TotalOrders++

		switch o.Status {
		case model.OrderCancelled:
			report.Summary.CancelledOrders++
		case model.OrderCompleted:
			report.Summary.CompletedOrders++
			report.Summary.Revenue += o.Total

			day := o.CreatedAt.UTC().Format(dayLayout)
			d, ok := daily[day]
			if !ok {
				d = &dto.DailyRevenue{Date: day}
				daily[day] = d
			}
			d.Revenue += o.Total
			d.Orders++

			for _, it := range o.Items {
				report.Summary.ItemsSold += it.Quantity
				p, ok := products[it.ProductID]
				if !ok {
					p = &dto.TopProduct{ProductID: it.ProductID, Name: it.ProductName}
					products[it.ProductID] = p
				}
				p.Quantity += it.Quantity
				p.Revenue += it.Quantity * it.UnitPrice
			}
		}
	}

	if report.Summary.CompletedOrders > 0 {
		report.Summary.AverageOrder = report.Summary.Revenue / int64(report.Summary.CompletedOrders)
	}

	for _, d := range daily {
		report.Daily = append(report.Daily, *d)
	}
	sort.Slice(report.Daily, func(i, j int) bool { return report.Daily[i].Date < report.Daily[j].Date })

	for _, p := range products {
		report.TopProducts = append(report.TopProducts, *p)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ProductID < b.ProductID
	})
	if len(report.TopProducts) > topProductLimit {
		report.TopProducts = report.TopProducts[:topProductLimit]
	}

	for _, st := range reportStatuses {
		if n := counts[st]; n > 0 {
			report.StatusBreakdown = append(report.StatusBreakdown, dto.StatusCount{Status: st, Count: n})
		}
	}

	return report, nil
}

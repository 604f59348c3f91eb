package retrieval

import "github.com/autoesg/analyzer/constants"

// Fixed query sets per track. These are static configuration: no dynamic
// query generation and no feedback loop from earlier retrieval results.
var (
	financialQueries = []string{
		"Income statement: total revenue, year-over-year revenue growth, gross margin, operating margin, EBITDA margin with prior-year comparisons",
		"Balance sheet: inventory levels, days inventory outstanding, net debt, leverage, liquidity position",
		"Cash flow statement: free cash flow, operating cash flow, capital expenditures, purchases of property and equipment, research and development spending",
		"Management discussion and analysis: demand trends, pricing, production outlook, forward-looking guidance with numbers or dates",
	}

	sustainabilityQueries = []string{
		"Scope 1, Scope 2, and Scope 3 greenhouse gas emissions with numeric values and year-on-year changes",
		"EV production percentages, battery recycling rates, ICE phase-out dates, supply chain traceability",
		"Sustainability claims, net-zero commitments, water usage, hazardous waste, regulatory fines, supplier audits",
	}
)

// QueriesFor returns the ordered retrieval queries for a track. The order
// is part of the contract: consolidation preserves it.
func QueriesFor(t constants.Track) []string {
	switch t {
	case constants.TrackFinancial:
		return append([]string(nil), financialQueries...)
	case constants.TrackSustainability:
		return append([]string(nil), sustainabilityQueries...)
	default:
		return nil
	}
}

package present

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

const betslipBase = "https://sportsbook.fanduel.com/addToBetslip"

// Rank sorts opportunities by stake percentage, largest first. Ties keep their input order.
// The input slice is not modified.
func Rank(opps []models.Opportunity) []models.Opportunity {
	ranked := make([]models.Opportunity, len(opps))
	copy(ranked, opps)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].StakePercent > ranked[j].StakePercent
	})
	return ranked
}

// BetslipURL builds the retail deep link that adds a selection to the betslip
func BetslipURL(marketID, selectionID string) string {
	return betslipBase + "?marketId[0]=" + url.QueryEscape(marketID) + "&selectionId[0]=" + url.QueryEscape(selectionID)
}

// Units converts a stake amount into betting units. A non-positive unit size returns the
// amount unchanged.
func Units(amount, unitSize decimal.Decimal) decimal.Decimal {
	if !unitSize.IsPositive() {
		return amount
	}
	return amount.Div(unitSize).Round(2)
}

// Table renders ranked opportunities. With a positive unit size the stake column is in units.
func Table(w io.Writer, opps []models.Opportunity, unitSize decimal.Decimal) error {
	if len(opps) == 0 {
		_, err := fmt.Fprintln(w, "no opportunities found")
		return err
	}

	stakeHeader := "Stake"
	if unitSize.IsPositive() {
		stakeHeader = "Units"
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Bet", "Retail", "Dec", "EV%", "Risk%", stakeHeader, "Betslip")

	for i, opp := range opps {
		bet := opp.Description
		if opp.Highlight {
			bet = "* " + bet
		}

		stake := "$" + opp.StakeAmount.StringFixed(2)
		if unitSize.IsPositive() {
			stake = Units(opp.StakeAmount, unitSize).StringFixed(2) + "u"
		}

		if err := table.Append(
			strconv.Itoa(i+1),
			bet,
			formatAmerican(opp.RetailPrice),
			fmt.Sprintf("%.2f", opp.RetailDecimal),
			fmt.Sprintf("%.2f", opp.EdgePercent),
			fmt.Sprintf("%.2f", opp.StakePercent),
			stake,
			BetslipURL(opp.RetailMarketID, opp.RetailSelectionID),
		); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}

	return table.Render()
}

func formatAmerican(price int) string {
	if price > 0 {
		return "+" + strconv.Itoa(price)
	}
	return strconv.Itoa(price)
}

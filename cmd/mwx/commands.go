package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwxkit/mwx/internal/model"
	"github.com/mwxkit/mwx/internal/money"
	"github.com/mwxkit/mwx/internal/store"
	"github.com/mwxkit/mwx/internal/wallet"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	plusStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	minusStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

func renderAmount(m money.Money) string {
	if m.IsNegative() {
		return minusStyle.Render(m.Display())
	}
	return plusStyle.Render(m.Display())
}

func loadWallet(g *Globals) (*wallet.Wallet, error) {
	path := g.storePath()
	if path == "" {
		return nil, fmt.Errorf("no store path: pass --store or set store.path in the config")
	}
	return wallet.Read(context.Background(), path)
}

// refs turns CLI values into query references: numeric values resolve by
// store id, everything else by name.
func refs(values []string) []wallet.Ref {
	out := make([]wallet.Ref, len(values))
	for i, v := range values {
		if id, err := strconv.Atoi(v); err == nil {
			out[i] = wallet.ByID(id)
			continue
		}
		out[i] = wallet.ByName(v)
	}
	return out
}

// InitCmd creates a fresh, empty backup database.
type InitCmd struct {
	Path string `arg:"" optional:"" help:"Where to create the database; defaults to the configured store path." type:"path"`
}

func (c *InitCmd) Run(g *Globals) error {
	path := c.Path
	if path == "" {
		path = g.storePath()
	}
	if path == "" {
		return fmt.Errorf("no store path: pass one or set store.path in the config")
	}
	if err := store.Init(path); err != nil {
		return err
	}
	fmt.Printf("created %s\n", path)
	return nil
}

// SummaryCmd prints every visible account with its all-time balance.
type SummaryCmd struct {
	Date string `help:"Limit balances to a period, e.g. 2024 or 2024-06." placeholder:"SPEC"`
}

func (c *SummaryCmd) Run(g *Globals) error {
	w, err := loadWallet(g)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Accounts"))
	var total money.Money
	for _, a := range w.Accounts {
		if a.Legacy || !a.Visible {
			continue
		}
		balance, err := w.Sum(wallet.ByEntity(a), c.Date)
		if err != nil {
			return err
		}
		total = total.Add(balance)
		fmt.Printf("  %-24s %s\n", nameStyle.Render(a.DisplayName()), renderAmount(balance))
	}
	fmt.Printf("  %-24s %s\n", headerStyle.Render("Total"), renderAmount(total))
	fmt.Println(faintStyle.Render(fmt.Sprintf(
		"%d incomes, %d expenses, %d transfers",
		len(w.Incomes()), len(w.Expenses()), len(w.Transfers()))))
	return nil
}

// FindCmd lists entries matching the given filters.
type FindCmd struct {
	Date        []string `help:"Fuzzy period spec, e.g. 2024 or 2024-06; repeatable." placeholder:"SPEC"`
	From        string   `help:"Start of an explicit period." placeholder:"SPEC"`
	To          string   `help:"End (exclusive) of an explicit period." placeholder:"SPEC"`
	Type        string   `help:"Entry type." enum:",expense,income,transfer" default:""`
	Account     []string `help:"Account on either side, by name or id."`
	Source      []string `help:"Sending party, by name or id."`
	Target      []string `help:"Receiving party, by name or id."`
	Counterpart []string `help:"Counterpart on either side, by name."`
	Category    []string `help:"Category by code, name or id."`
	Item        []string `help:"Item pattern: substring, or exact with a leading '!'."`
	Flow        int      `help:"+1 keeps entries the account receives, -1 those it sends."`
}

func (c *FindCmd) Run(g *Globals) error {
	w, err := loadWallet(g)
	if err != nil {
		return err
	}

	var opts []wallet.Option
	if len(c.Date) > 0 {
		opts = append(opts, wallet.Date(c.Date...))
	}
	if c.From != "" || c.To != "" {
		opts = append(opts, wallet.DateBetween(c.From, c.To))
	}
	switch c.Type {
	case "expense":
		opts = append(opts, wallet.Type(model.Expense))
	case "income":
		opts = append(opts, wallet.Type(model.Income))
	case "transfer":
		opts = append(opts, wallet.Type(model.Transfer))
	}
	if len(c.Account) > 0 {
		opts = append(opts, wallet.Account(refs(c.Account)...))
	}
	if len(c.Source) > 0 {
		opts = append(opts, wallet.Source(refs(c.Source)...))
	}
	if len(c.Target) > 0 {
		opts = append(opts, wallet.Target(refs(c.Target)...))
	}
	if len(c.Counterpart) > 0 {
		opts = append(opts, wallet.Counterpart(refs(c.Counterpart)...))
	}
	if len(c.Category) > 0 {
		opts = append(opts, wallet.Category(refs(c.Category)...))
	}
	if len(c.Item) > 0 {
		opts = append(opts, wallet.Item(c.Item...))
	}
	if c.Flow != 0 {
		opts = append(opts, wallet.Flow(c.Flow))
	}

	entries, err := w.FindEntries(opts...)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-10s %-28s %s %s\n",
			e.Date().Format("2006-01-02"),
			faintStyle.Render("["+e.Category().Code()+"]"),
			e.Item(),
			renderAmount(e.Amount()),
			faintStyle.Render(e.Source().DisplayName()+" -> "+e.Target().DisplayName()),
		)
	}
	fmt.Println(faintStyle.Render(fmt.Sprintf("%d entries", len(entries))))
	return nil
}

// SumCmd totals one account's movement over a period.
type SumCmd struct {
	Account string `arg:"" help:"Account name or id."`
	Date    string `arg:"" optional:"" help:"Fuzzy period spec; empty covers everything."`
	Budget  bool   `help:"Total everything strictly before the period instead."`
}

func (c *SumCmd) Run(g *Globals) error {
	w, err := loadWallet(g)
	if err != nil {
		return err
	}
	ref := refs([]string{c.Account})[0]

	var total money.Money
	if c.Budget {
		if c.Date == "" {
			return fmt.Errorf("--budget needs a period")
		}
		total, err = w.Budget(ref, c.Date)
	} else {
		total, err = w.Sum(ref, c.Date)
	}
	if err != nil {
		return err
	}
	fmt.Println(renderAmount(total))
	return nil
}

// WriteCmd writes the wallet back into a new backup file.
type WriteCmd struct {
	Output    string `short:"o" help:"Explicit target path." type:"path"`
	Overwrite bool   `help:"Replace an existing target."`
}

func (c *WriteCmd) Run(g *Globals) error {
	w, err := loadWallet(g)
	if err != nil {
		return err
	}
	report, err := w.Write(context.Background(), store.WriteOptions{
		Path:      c.Output,
		Pattern:   g.cfg.Write.Pattern,
		Overwrite: c.Overwrite || g.cfg.Write.Overwrite,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d inserted, %d updated, %d deleted)\n",
		report.Path, report.Inserted, report.Updated, report.Deleted)
	for _, warning := range report.Warnings {
		fmt.Println(minusStyle.Render("warning: " + warning.String()))
	}
	return nil
}

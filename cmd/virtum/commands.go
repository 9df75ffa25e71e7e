package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"virtum/internal/app"
	"virtum/internal/core"
)

type usageError string

func (e usageError) Error() string { return string(e) }

func dispatch(ctx context.Context, a *app.App, cmd string, args []string) error {
	switch cmd {
	case "dashboard":
		return a.Dashboard(ctx)
	case "history":
		return a.History(ctx)
	case "graph":
		return a.Graph(ctx)
	case "closures":
		return a.Closures(ctx)
	case "expense":
		return expenseCmd(ctx, a, args)
	case "fixed":
		return fixedCmd(ctx, a, args)
	case "salary":
		return a.Salary(ctx, optionalArg(args))
	case "theme":
		return a.Theme(ctx, optionalArg(args))
	case "themes":
		return a.Themes(ctx)
	case "close":
		fs := newFlagSet("close")
		yes := fs.Bool("yes", false, "confirma o fechamento")
		if err := parse(fs, args); err != nil {
			return err
		}
		return a.CloseMonth(ctx, *yes)
	case "reopen":
		if len(args) != 1 {
			return usageError("Informe o mês: virtum reopen AAAA-MM")
		}
		return a.Reopen(ctx, args[0])
	case "apply":
		return a.Apply(ctx)
	case "export":
		fs := newFlagSet("export")
		out := fs.String("o", "", "arquivo .xlsx de saída")
		month := fs.String("month", "", "exporta só os gastos do mês AAAA-MM")
		if err := parse(fs, args); err != nil {
			return err
		}
		if *out == "" {
			return usageError("Informe o arquivo de saída com -o")
		}
		return a.Export(ctx, *out, *month)
	case "import-legacy":
		if len(args) != 1 {
			return usageError("Informe o caminho do banco antigo")
		}
		return a.ImportLegacy(ctx, args[0])
	default:
		return usageError(fmt.Sprintf("Comando desconhecido: %s", cmd))
	}
}

func expenseCmd(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return usageError("Informe a ação: add, show, edit ou rm")
	}
	action, args := args[0], args[1:]
	switch action {
	case "add":
		fs, in := expenseFlags("expense add")
		if err := parse(fs, args); err != nil {
			return err
		}
		_, err := a.AddExpense(ctx, in.collect(fs))
		return err
	case "show":
		id, _, err := leadingID(args)
		if err != nil {
			return err
		}
		return a.ShowExpense(ctx, id)
	case "edit":
		id, rest, err := leadingID(args)
		if err != nil {
			return err
		}
		fs, in := expenseFlags("expense edit")
		if err := parse(fs, rest); err != nil {
			return err
		}
		return a.EditExpense(ctx, id, in.collect(fs))
	case "rm":
		id, _, err := leadingID(args)
		if err != nil {
			return err
		}
		return a.DeleteExpense(ctx, id)
	default:
		return usageError(fmt.Sprintf("Ação desconhecida: expense %s", action))
	}
}

func fixedCmd(ctx context.Context, a *app.App, args []string) error {
	action := "list"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}
	switch action {
	case "list":
		return a.RecurringCharges(ctx)
	case "add":
		fs := newFlagSet("fixed add")
		category := fs.String("category", "", categoryHelp())
		amount := fs.String("amount", "", "valor mensal")
		desc := fs.String("desc", "", "descrição")
		if err := parse(fs, args); err != nil {
			return err
		}
		_, err := a.AddRecurringCharge(ctx, app.ChargeInput{Category: *category, Amount: *amount, Description: *desc})
		return err
	case "toggle":
		id, _, err := leadingID(args)
		if err != nil {
			return err
		}
		return a.ToggleRecurringCharge(ctx, id)
	case "rm":
		id, _, err := leadingID(args)
		if err != nil {
			return err
		}
		return a.DeleteRecurringCharge(ctx, id)
	default:
		return usageError(fmt.Sprintf("Ação desconhecida: fixed %s", action))
	}
}

// expenseValues holds the flag targets of expense add and edit.
type expenseValues struct {
	category, amount, desc, date string
}

func expenseFlags(name string) (*flag.FlagSet, *expenseValues) {
	fs := newFlagSet(name)
	v := &expenseValues{}
	fs.StringVar(&v.category, "category", "", categoryHelp())
	fs.StringVar(&v.amount, "amount", "", "valor, com ponto ou vírgula")
	fs.StringVar(&v.desc, "desc", "", "descrição")
	fs.StringVar(&v.date, "date", "", "data DD/MM/AAAA (padrão: hoje)")
	return fs, v
}

// collect keeps only the flags given on the command line, so edit leaves
// the others untouched.
func (v *expenseValues) collect(fs *flag.FlagSet) app.ExpenseInput {
	var in app.ExpenseInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "category":
			in.Category = &v.category
		case "amount":
			in.Amount = &v.amount
		case "desc":
			in.Description = &v.desc
		case "date":
			in.Date = &v.date
		}
	})
	return in
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError(fmt.Sprintf("%s: %v", fs.Name(), err))
	}
	if fs.NArg() > 0 {
		return usageError(fmt.Sprintf("%s: argumento inesperado %q", fs.Name(), fs.Arg(0)))
	}
	return nil
}

// leadingID takes the numeric id that must come first in args.
func leadingID(args []string) (int64, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return 0, nil, usageError("Informe o ID.")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, nil, usageError(fmt.Sprintf("ID inválido: %s", args[0]))
	}
	return id, args[1:], nil
}

func optionalArg(args []string) *string {
	if len(args) == 0 {
		return nil
	}
	v := strings.Join(args, " ")
	return &v
}

func categoryHelp() string {
	return "categoria: " + strings.Join(core.Categories, ", ")
}

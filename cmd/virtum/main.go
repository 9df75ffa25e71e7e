package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"virtum/internal/app"
	"virtum/internal/cli"
	"virtum/internal/config"
	"virtum/internal/log"
)

func main() {
	// Load .env file for local use (ignored when absent)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	ctx, stop := cli.SignalContext()
	code := run(ctx, logger, cfg, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config, args []string) int {
	if len(args) > 0 && isHelp(args[0]) {
		fmt.Fprint(os.Stdout, usage)
		return 0
	}

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if res.Cleanup == nil {
			return
		}
		if err := res.Cleanup(); err != nil {
			logger.WarnContext(ctx, "Failed to close ledger", log.FieldError, err)
		}
	}()

	a := app.New(res.Store, logger)
	cmd := "dashboard"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	ctx = log.NewContext(ctx, logger.With(log.FieldCommand, cmd))

	if err := dispatch(ctx, a, cmd, args); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, string(ue))
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		logger.DebugContext(ctx, "Command failed",
			log.NewFields().WithCommand(cmd).WithError(err).ToSlice()...)
		fmt.Fprintln(os.Stderr, app.UserMessage(err))
		return 1
	}
	return 0
}

func isHelp(s string) bool {
	return s == "help" || s == "-h" || s == "-help" || s == "--help"
}

const usage = `Virtum Finance - controle + sistema

Uso: virtum [comando] [argumentos]

Páginas:
  dashboard                       resumo do mês (padrão)
  history                         histórico de fechamentos
  graph                           gráfico mensal dos fechamentos
  closures                        mês atual e últimos fechamentos

Gastos:
  expense add -category C -amount V [-desc D] [-date DD/MM/AAAA]
  expense show ID
  expense edit ID [-category C] [-amount V] [-desc D] [-date DD/MM/AAAA]
  expense rm ID

Fixos (recorrentes):
  fixed list
  fixed add -category C -amount V [-desc D]
  fixed toggle ID
  fixed rm ID
  apply                           lança os fixos do mês

Mês:
  close [-yes]                    fecha o mês atual
  reopen AAAA-MM                  apaga um fechamento para corrigir

Configuração:
  salary [VALOR]                  mostra ou define o salário
  theme [CHAVE] | themes          mostra, define ou lista as paletas

Dados:
  export -o ARQUIVO.xlsx [-month AAAA-MM]
  import-legacy CAMINHO           importa o banco antigo

• Salário: define a base do seu saldo. Use ponto ou vírgula. Ex: 2500,50
• Fixos: são lançados automaticamente no início de cada mês.
• Fechar mês: salva gastos e saldo do mês no histórico.
`

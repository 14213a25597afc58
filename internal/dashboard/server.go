// Package dashboard serves a small read-only web view over the ledger:
// a summary page plus JSON endpoints for aggregates and transactions.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbarbosa/gastos-tracker/internal/store"
)

// Server exposes the ledger over HTTP. It reads the store on every request,
// so a dashboard left running always shows the latest ingestion.
type Server struct {
	store *store.Store
	log   zerolog.Logger
}

// NewServer creates a dashboard server over the given store.
func NewServer(st *store.Store, log zerolog.Logger) *Server {
	return &Server{store: st, log: log}
}

// Handler builds the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/banks", s.handleBanks)
	mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)

	var handler http.Handler = mux
	handler = cors(handler)
	handler = requestLogger(s.log)(handler)
	handler = recovery(s.log)(handler)
	return handler
}

// ListenAndServe runs the dashboard until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Gastos</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; color: #222; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; margin: 1rem 0; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
td.num { text-align: right; }
#resumo span { margin-right: 2rem; }
</style>
</head>
<body>
<h1>Gastos do cartão</h1>
<div id="resumo"></div>
<h2>Por categoria</h2>
<table id="categorias"><thead><tr><th>Categoria</th><th>Total (R$)</th><th>Qtde</th></tr></thead><tbody></tbody></table>
<h2>Por período</h2>
<table id="periodos"><thead><tr><th>Período</th><th>Total (R$)</th><th>Qtde</th></tr></thead><tbody></tbody></table>
<h2>Últimas transações</h2>
<table id="transacoes"><thead><tr><th>Data</th><th>Descrição</th><th>Valor (R$)</th><th>Banco</th><th>Categoria</th></tr></thead><tbody></tbody></table>
<script>
async function load() {
  const resumo = await (await fetch('/api/summary')).json();
  document.getElementById('resumo').innerHTML =
    '<span>Registros: ' + resumo.registros + '</span>' +
    '<span>Total: R$ ' + resumo.total + '</span>' +
    '<span>Ticket médio: R$ ' + resumo.ticket_medio + '</span>' +
    '<span>Sem categoria: ' + resumo.sem_categoria + '</span>';

  const cats = await (await fetch('/api/categories')).json();
  fillBuckets('categorias', cats.categorias);

  const periodos = await (await fetch('/api/timeline')).json();
  fillBuckets('periodos', periodos.periodos);

  const txs = await (await fetch('/api/transactions?limit=50')).json();
  const body = document.querySelector('#transacoes tbody');
  for (const t of txs.transacoes || []) {
    const tr = document.createElement('tr');
    tr.innerHTML = '<td>' + t.data + '</td><td>' + t.descricao +
      '</td><td class="num">' + t.valor + '</td><td>' + t.banco +
      '</td><td>' + (t.categoria || 'pendente') + '</td>';
    body.appendChild(tr);
  }
}
function fillBuckets(id, entries) {
  const body = document.querySelector('#' + id + ' tbody');
  for (const e of entries || []) {
    const tr = document.createElement('tr');
    tr.innerHTML = '<td>' + e.label + '</td><td class="num">' + e.total +
      '</td><td class="num">' + e.quantidade + '</td>';
    body.appendChild(tr);
  }
}
load();
</script>
</body>
</html>
`

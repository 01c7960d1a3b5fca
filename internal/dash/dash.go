package dash

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/you/arb-scanner/internal/types"
)

const keepOpps = 50

// Row — одна строка = (Pair, Venue) последнего цикла
type Row struct {
	Pair      string  `json:"pair"`
	Venue     string  `json:"venue"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
	// SpreadVsMin — отклонение от самой дешёвой доступной площадки
	SpreadVsMin float64 `json:"spreadVsMin"`
	TS          int64   `json:"ts"`
}

type View struct {
	Rows          []Row               `json:"rows"`
	Opportunities []types.Opportunity `json:"opportunities"`
}

type Store struct {
	mu   sync.RWMutex
	rows []Row
	opps []types.Opportunity
}

func NewStore() *Store { return &Store{} }

// Broadcast — чтобы Store можно было подключить как feed бота
func (s *Store) Broadcast(rep types.CycleReport) { s.Update(rep) }

func (s *Store) Update(rep types.CycleReport) {
	minPx := 0.0
	for _, vp := range rep.Prices {
		if vp.OK && (minPx == 0 || vp.Price < minPx) {
			minPx = vp.Price
		}
	}

	rows := make([]Row, 0, len(rep.Prices))
	for _, vp := range rep.Prices {
		r := Row{
			Pair:      rep.Pair,
			Venue:     string(vp.Venue),
			Price:     vp.Price,
			Available: vp.OK,
			TS:        rep.Ts.UnixMilli(),
		}
		if vp.OK && minPx > 0 {
			r.SpreadVsMin = vp.Price/minPx - 1
		}
		rows = append(rows, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.opps = append(s.opps, rep.Opportunities...)
	if n := len(s.opps); n > keepOpps {
		s.opps = append([]types.Opportunity(nil), s.opps[n-keepOpps:]...)
	}
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Rows:          append([]Row(nil), s.rows...),
		Opportunities: append([]types.Opportunity(nil), s.opps...),
	}
}

func Register(mux *http.ServeMux, s *Store) {
	mux.HandleFunc("/api/dash", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.View())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexHTML)
	})
}

func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>DEX Arbitrage Scanner</title>
  <style>
    :root { --bg:#f8fafc; --card:#fff; --muted:#6b7280; --chip:#e5e7eb; }
    body{margin:0;background:var(--bg);font:14px/1.4 ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Ubuntu; color:#111827;}
    .wrap{max-width:960px;margin:24px auto;padding:0 16px;}
    table{width:100%;border-collapse:collapse;background:var(--card);border-radius:16px;overflow:hidden;box-shadow:0 10px 30px rgba(0,0,0,.06);margin-bottom:24px;}
    thead{background:#f3f4f6;} th,td{padding:10px 14px;text-align:left;} tbody tr{border-top:1px solid #f3f4f6;}
    .chip{display:inline-block;font-size:12px;padding:2px 8px;background:var(--chip);border-radius:999px;color:#374151;}
    .sub{color:var(--muted);font-size:12px;margin:0 0 8px;}
  </style>
</head>
<body>
<div class="wrap">
  <h1 style="font-size:22px;font-weight:600">DEX Arbitrage Scanner</h1>
  <p class="sub">Latest cycle prices (base per quote). Spread is relative to the cheapest venue.</p>
  <table>
    <thead><tr><th>Pair</th><th>Venue</th><th>Price</th><th>Spread</th><th style="text-align:right">Updated</th></tr></thead>
    <tbody id="rows"></tbody>
  </table>
  <p class="sub">Recent opportunities</p>
  <table>
    <thead><tr><th>Time</th><th>Buy on</th><th>Sell on</th><th>Buy px</th><th>Sell px</th><th>Profit</th></tr></thead>
    <tbody id="opps"></tbody>
  </table>
</div>
<script>
  function esc(s){ return String(s==null?'':s).replace(/[&<>"']/g, function(c){ return {'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]; }); }
  function px(r){ return r.available ? Number(r.price).toFixed(4) : '—'; }
  function pct(x){ return (x==null||isNaN(x)) ? '—' : ((x*100).toFixed(3)+'%'); }
  function rowHTML(r){
    return '<tr><td><strong>'+esc(r.pair)+'</strong></td><td><span class="chip">'+esc(r.venue)+'</span></td>'
      + '<td>'+px(r)+'</td><td>'+(r.available?pct(r.spreadVsMin):'—')+'</td>'
      + '<td style="text-align:right;color:#6B7280;font-size:12px">'+new Date(r.ts||Date.now()).toLocaleTimeString()+'</td></tr>';
  }
  function oppHTML(o){
    return '<tr><td>'+new Date(o.timestamp).toLocaleTimeString()+'</td><td>'+esc(o.buy_on)+'</td><td>'+esc(o.sell_on)+'</td>'
      + '<td>'+Number(o.buy_price).toFixed(4)+'</td><td>'+Number(o.sell_price).toFixed(4)+'</td><td>'+Number(o.profit).toFixed(4)+'</td></tr>';
  }
  async function tick(){
    try{
      var res = await fetch('/api/dash', {cache:'no-store'});
      if(!res.ok) throw new Error('status '+res.status);
      var data = await res.json();
      document.getElementById('rows').innerHTML = (data.rows||[]).map(rowHTML).join('');
      document.getElementById('opps').innerHTML = (data.opportunities||[]).slice().reverse().map(oppHTML).join('');
    }catch(e){}
  }
  tick(); setInterval(tick, 2000);
</script>
</body>
</html>`

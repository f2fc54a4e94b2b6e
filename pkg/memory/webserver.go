package memory

import (
	"errors"
	html "html/template"

	"github.com/memsim/memsim/pkg/types"
	pz "github.com/weberc2/httpeasy"
)

// WebServer renders the arena as a proportional block bar. It carries no
// logic of its own beyond formatting Manager snapshots.
type WebServer struct {
	Memory *Manager
}

type blockView struct {
	types.Block
	// Percent is the block's share of the arena, 0-100.
	Percent float64
}

type indexContext struct {
	Initialized bool
	Arena       *types.Arena
	Stats       *types.ArenaStats
	Blocks      []blockView
}

func (ws *WebServer) IndexRoute() pz.Route {
	return pz.Route{
		Path:   "/",
		Method: "GET",
		Handler: func(r pz.Request) pz.Response {
			arena, err := ws.Memory.Snapshot()
			if err != nil {
				if errors.Is(err, types.ErrArenaUninitialized) {
					return pz.Ok(
						pz.HTMLTemplate(indexTemplate, &indexContext{}),
						&logging{Message: "rendered index (uninitialized)"},
					)
				}
				return pz.HandleError("snapshotting memory", err)
			}
			stats, err := ws.Memory.Stats()
			if err != nil {
				return pz.HandleError("computing memory stats", err)
			}

			blocks := make([]blockView, len(arena.Blocks))
			for i, b := range arena.Blocks {
				blocks[i] = blockView{
					Block:   b,
					Percent: 100 * float64(b.Size) / float64(arena.TotalSize),
				}
			}

			return pz.Ok(
				pz.HTMLTemplate(indexTemplate, &indexContext{
					Initialized: true,
					Arena:       arena,
					Stats:       stats,
					Blocks:      blocks,
				}),
				&logging{Message: "rendered index", Arena: arena.ID},
			)
		},
	}
}

var indexTemplate = html.Must(html.New("").Parse(`<html>
<head>
<title>Memory Arena</title>
<style>
#arena { display: flex; height: 48px; border: 1px solid #333; }
.block { box-sizing: border-box; border-right: 1px solid #333; overflow: hidden; font-size: 11px; text-align: center; }
.allocated { background: #e07a5f; }
.free { background: #81b29a; }
form { margin: 4px 0; }
</style>
</head>
<body>
<h1>Memory Arena</h1>

{{if .Initialized}}
<div id=arena>
{{range .Blocks}}
	<div class="block {{if .Free}}free{{else}}allocated{{end}}"
		style="width: {{printf "%.4f" .Percent}}%"
		title="addr {{.Start}} size {{.Size}}">
		{{if .Free}}free{{else}}#{{.ID}}{{end}}
	</div>
{{end}}
</div>
<p id=stats>
	total {{.Stats.TotalSize}} |
	allocated {{.Stats.Allocated}} |
	free {{.Stats.Free}} |
	largest free {{.Stats.LargestFree}} |
	fragmentation {{.Stats.Fragmentation}}
</p>
{{else}}
<p id=uninitialized>Memory not initialized.</p>
{{end}}

<form onsubmit="return post('/api/init', {total_size: int('total-size')})">
	<input type=number id=total-size placeholder="total size" value=1000>
	<input type=submit value=Init>
</form>
<form onsubmit="return post('/api/allocate', {size: int('alloc-size'), strategy: document.getElementById('strategy').value})">
	<input type=number id=alloc-size placeholder=size value=100>
	<select id=strategy>
		<option value=first>first fit</option>
		<option value=best selected>best fit</option>
		<option value=worst>worst fit</option>
	</select>
	<input type=submit value=Allocate>
</form>
<form onsubmit="return post('/api/deallocate', {block_id: int('block-id')})">
	<input type=number id=block-id placeholder="block id">
	<input type=submit value=Deallocate>
</form>

<script>
function int(id) { return parseInt(document.getElementById(id).value, 10); }
function post(path, body) {
	fetch(path, {
		method: "POST",
		headers: {"Content-Type": "application/json"},
		body: JSON.stringify(body),
	}).then(function(rsp) {
		if (!rsp.ok) { return rsp.text().then(function(t) { alert(t); }); }
	}).then(function() { location.reload(); });
	return false;
}
</script>
</body>
</html>`))

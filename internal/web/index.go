package web

// Single page dashboard: connect form, balances, tips and the chat widget.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Privacyx Guardian</title>
  <style>
    :root { --bg:#0b0d12; --panel:#151923; --ink:#e8ecf4; --soft:#8a93a6; --accent:#7c5cff; }
    * { box-sizing:border-box; }
    body { margin:0; padding:2rem; background:var(--bg); color:var(--ink); font-family:'Space Mono',monospace; }
    #app { max-width:960px; margin:0 auto; display:grid; gap:1.5rem; }
    .panel { background:var(--panel); border:1px solid #232838; border-radius:12px; padding:1.25rem; }
    h1 { margin:0; font-size:1.4rem; }
    h2 { margin:0 0 .75rem; font-size:1rem; color:var(--soft); text-transform:uppercase; letter-spacing:.08em; }
    input { width:100%; padding:.6rem; border-radius:8px; border:1px solid #2b3144; background:#0f121a; color:var(--ink); }
    button { margin-top:.6rem; padding:.5rem 1rem; border:0; border-radius:8px; background:var(--accent); color:#fff; cursor:pointer; }
    button:disabled { opacity:.5; cursor:default; }
    ul { margin:0; padding-left:1.1rem; }
    li { margin:.35rem 0; }
    .balance { display:flex; align-items:center; gap:.5rem; }
    .balance img { width:20px; height:20px; }
    .muted { color:var(--soft); }
    #chat-log { max-height:320px; overflow-y:auto; display:grid; gap:.4rem; }
    .msg { padding:.5rem .75rem; border-radius:8px; max-width:85%; white-space:pre-wrap; }
    .msg.user { background:var(--accent); justify-self:end; }
    .msg.assistant { background:#222838; }
  </style>
</head>
<body>
<div id="app">
  <div class="panel">
    <h1>🛡️ Privacyx Guardian</h1>
    <p class="muted">Paste a wallet address to analyze its on-chain privacy.</p>
    <input id="address" placeholder="0x..." />
    <button id="connect">Connect</button>
    <button id="disconnect">Disconnect</button>
    <p id="status" class="muted">disconnected</p>
  </div>
  <div class="panel"><h2>Balances</h2><div id="balances" class="muted">No wallet connected.</div></div>
  <div class="panel"><h2>Privacy tips</h2><ul id="heuristic"></ul></div>
  <div class="panel"><h2>AI tips</h2><p id="ai-loading" class="muted" hidden>🤖 Generating AI tips...</p><ul id="ai"></ul></div>
  <div class="panel">
    <h2>Chat</h2>
    <div id="chat-log"></div>
    <p id="typing" class="muted" hidden></p>
    <input id="chat-input" placeholder="Ask a privacy question..." />
    <button id="chat-send">Send</button>
    <button id="chat-reset">Reset</button>
  </div>
</div>
<script>
const $ = (id) => document.getElementById(id);
const post = (url, body) => fetch(url, { method:'POST', headers:{'Content-Type':'application/json'}, body: JSON.stringify(body || {}) });

function list(el, tips) {
  el.innerHTML = '';
  (tips || []).forEach(t => { const li = document.createElement('li'); li.textContent = t.text; el.appendChild(li); });
}

function renderAnalysis(s) {
  $('status').textContent = s.status + (s.address ? ' · ' + s.address : '') + ' · ' + s.phase;
  const el = $('balances');
  if (s.phase === 'analyzing') { el.textContent = 'Analyzing wallet...'; }
  else if (!s.balances || s.balances.length === 0) { el.textContent = s.status === 'connected' ? 'No balances.' : 'No wallet connected.'; }
  else {
    el.innerHTML = '';
    s.balances.forEach(b => {
      const row = document.createElement('div'); row.className = 'balance';
      if (b.icon) { const img = document.createElement('img'); img.src = b.icon; row.appendChild(img); }
      row.appendChild(document.createTextNode(b.symbol + ': ' + b.amount));
      el.appendChild(row);
    });
  }
  list($('heuristic'), s.heuristic_tips);
  list($('ai'), s.ai_tips);
  $('ai-loading').hidden = !s.ai_loading;
}

function renderChat(s) {
  const log = $('chat-log'); log.innerHTML = '';
  (s.transcript || []).filter(m => m.role !== 'system').forEach(m => {
    const div = document.createElement('div'); div.className = 'msg ' + m.role; div.textContent = m.content; log.appendChild(div);
  });
  $('typing').hidden = !s.typing; $('typing').textContent = s.indicator || '';
  $('chat-send').disabled = s.typing;
  log.scrollTop = log.scrollHeight;
}

async function refresh() { renderAnalysis(await (await fetch('/api/analysis')).json()); }

$('connect').onclick = async () => { await post('/api/connect', { address: $('address').value }); refresh(); };
$('disconnect').onclick = async () => renderAnalysis(await (await post('/api/disconnect')).json());
$('chat-send').onclick = async () => {
  const text = $('chat-input').value; if (!text.trim()) return;
  $('chat-input').value = '';
  await post('/api/chat', { text });
};
$('chat-input').addEventListener('keydown', e => { if (e.key === 'Enter') $('chat-send').click(); });
$('chat-reset').onclick = () => post('/api/chat/reset');

new EventSource('/api/chat/stream').addEventListener('chat', e => renderChat(JSON.parse(e.data)));
new EventSource('/api/analysis/stream').addEventListener('analysis', () => refresh());
setInterval(refresh, 1500);
refresh();
</script>
</body>
</html>
`

package api

const eventsDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Login Browser Event Feeds</title>
  <style>
    body { background: #0d1117; color: #c9d1d9; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 0 auto; max-width: 880px; padding: 32px; }
    code, pre { background: #161b22; border-radius: 4px; font-family: ui-monospace, SFMono-Regular, monospace; }
    code { padding: 1px 5px; }
    pre { border: 1px solid #30363d; overflow-x: auto; padding: 12px; }
    table { border-collapse: collapse; width: 100%; }
    td, th { border-bottom: 1px solid #30363d; padding: 6px 8px; text-align: left; vertical-align: top; }
    a { color: #58a6ff; }
  </style>
</head>
<body>
  <p><a href="/docs">&larr; REST API</a></p>
  <h1>Event Feeds</h1>
  <p>The browser publishes tab, toolbar and session changes on three feeds.
  Subscribe with Server-Sent Events at <code>GET /events</code> or with a
  WebSocket at <code>GET /events/ws</code>. Both accept
  <code>?feeds=tabs,toolbar,session</code>; omit it to receive everything.</p>

  <p>Each subscriber has a 256 event buffer. A subscriber that falls behind
  misses events; <code>GET /api/v1/events/status</code> reports the connected
  subscriber count and how many deliveries were dropped.</p>

  <h2>Envelope</h2>
<pre>{
  "id": "5b0c7c0e-8f0e-4d7b-9d43-0d3f4d1c2a11",
  "feed": "tabs",
  "type": "load_finished",
  "time": "2026-01-02T15:04:05Z",
  "payload": { ... }
}</pre>
  <p>Over SSE the <code>type</code> is the event name and the payload is the data line.</p>

  <h2>Types</h2>
  <table>
    <tr><th>Feed</th><th>Type</th><th>Payload</th></tr>
    <tr><td>tabs</td><td><code>tab_opened</code>, <code>tab_closed</code></td><td>tab record</td></tr>
    <tr><td>tabs</td><td><code>load_started</code>, <code>load_progress</code>, <code>load_finished</code>, <code>load_failed</code></td><td>tab record</td></tr>
    <tr><td>toolbar</td><td><code>toolbar</code></td><td>toolbar state, sent only when it changes</td></tr>
    <tr><td>session</td><td><code>login_requested</code></td><td>connection parameters without the password</td></tr>
    <tr><td>session</td><td><code>login_rejected</code></td><td><code>{"url", "reason"}</code></td></tr>
    <tr><td>session</td><td><code>login_dispatched</code>, <code>login_failed</code></td><td>login target and error text</td></tr>
    <tr><td>session</td><td><code>connected</code>, <code>disconnected</code></td><td>session state</td></tr>
  </table>

  <p>Slow subscribers drop events instead of blocking the browser.</p>
</body>
</html>`

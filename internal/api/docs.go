package api

// docsHTML renders the OpenAPI reference beside a sidebar of route groups.
// Group anchors follow the operation tags used in the register* functions.
const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Login Browser API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
  <style>
    body { background: #0d1117; display: flex; height: 100vh; margin: 0; }
    nav { border-right: 1px solid #30363d; color: #c9d1d9; flex: 0 0 220px; font: 13px -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; overflow-y: auto; padding: 16px; }
    nav h2 { font-size: 12px; letter-spacing: .04em; margin: 16px 0 6px; text-transform: uppercase; }
    nav ul { list-style: none; margin: 0; padding: 0; }
    nav li { margin: 4px 0; }
    nav a { color: #58a6ff; text-decoration: none; }
    nav small { color: #8b949e; display: block; }
    main { flex: 1; min-width: 0; }
  </style>
</head>
<body>
  <nav>
    <strong>Login Browser</strong>
    <h2>Routes</h2>
    <ul>
      <li><a href="#tag/Tabs">Tabs</a><small>/api/v1/tabs, /api/v1/toolbar</small></li>
      <li><a href="#tag/Navigation">Navigation</a><small>/api/v1/navigation, /api/v1/classify</small></li>
      <li><a href="#tag/Settings">Settings</a><small>/api/v1/settings, /api/v1/storage</small></li>
      <li><a href="#tag/Bookmarks">Bookmarks</a><small>/api/v1/bookmarks, /api/v1/favorite</small></li>
      <li><a href="#tag/Session">Session</a><small>/api/v1/session</small></li>
      <li><a href="#tag/Events">Events</a><small>/api/v1/events/status</small></li>
    </ul>
    <h2>More</h2>
    <ul>
      <li><a href="/docs/events">Event feeds</a><small>/events, /events/ws</small></li>
      <li><a href="/openapi.json">OpenAPI document</a></li>
    </ul>
  </nav>
  <main>
    <elements-api
      apiDescriptionUrl="/openapi.json"
      router="hash"
      layout="sidebar"
      hideSchemas
      tryItCredentialsPolicy="same-origin"
      darkMode
    />
  </main>
</body>
</html>`

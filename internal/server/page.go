// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import "html/template"

type indexPage struct {
	BaseDir string
}

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>PlantUML Mindmap → PDF</title>
    <style>
        body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; padding: 0 1rem; }
        textarea { width: 100%; height: 28rem; font-family: monospace; font-size: 0.95rem; }
        .row { display: flex; gap: 1rem; align-items: center; margin-top: 0.75rem; }
        footer { margin-top: 1rem; color: #555; font-size: 0.85rem; }
    </style>
</head>
<body>
<h1>PlantUML Mindmap → PDF</h1>
<form method="post" action="/convert">
    <p>Paste your PlantUML mindmap text below. Click 'Convert &amp; Save as PDF' to export.</p>
    <textarea id="source" name="source" placeholder="@startmindmap&#10;* Root&#10;** Child&#10;@endmindmap"></textarea>
    <div class="row">
        <label for="filename">Save as:</label>
        <input id="filename" name="filename" type="text" placeholder="mindmap.pdf" />
        <button type="submit">Convert &amp; Save as PDF</button>
    </div>
</form>
<footer>Using base dir: {{.BaseDir}}</footer>
</body>
</html>
`

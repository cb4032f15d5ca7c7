package http

import "net/http"

// handleIndex renders the chat view. All state comes from /api/events.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Document QA</title>
    <style>
        body { font-family: system-ui, sans-serif; margin: 0; background: #f5f5f7; }
        .container { max-width: 820px; margin: 0 auto; padding: 16px; }
        header { display: flex; justify-content: space-between; align-items: baseline; }
        #doc { color: #555; font-size: 0.9em; }
        #messages { display: flex; flex-direction: column; gap: 8px; min-height: 300px; }
        .message { padding: 10px 14px; border-radius: 10px; max-width: 85%; white-space: pre-wrap; }
        .user { align-self: flex-end; background: #2f6fed; color: #fff; }
        .assistant { align-self: flex-start; background: #fff; }
        .system { align-self: center; background: #e7f6ec; color: #1d6b34; font-size: 0.9em; }
        .error { align-self: center; background: #fdecec; color: #a12020; font-size: 0.9em; }
        .sources-toggle { margin-top: 6px; font-size: 0.85em; cursor: pointer; color: #2f6fed; background: none; border: none; padding: 0; }
        .source { margin-top: 6px; padding: 6px; border-left: 3px solid #2f6fed; background: #f0f4ff; font-size: 0.85em; }
        .placeholder { color: #888; text-align: center; margin-top: 80px; }
        .pending { color: #888; font-style: italic; }
        form { display: flex; gap: 8px; margin-top: 16px; }
        input[type=text] { flex: 1; padding: 8px; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Document QA</h1>
            <span id="doc">No document</span>
        </header>
        <main>
            <div id="messages"></div>
            <form id="upload-form">
                <input type="file" id="file-input" accept=".pdf,.docx,.doc,.txt,.xlsx,.csv">
                <button type="submit" id="upload-btn">Upload</button>
            </form>
            <form id="query-form">
                <input type="text" id="query-input" placeholder="Ask about your document..." autocomplete="off">
                <button type="submit" id="send-btn">Send</button>
            </form>
        </main>
    </div>
    <script>
        let version = -1;

        function escapeHtml(text) {
            const div = document.createElement('div');
            div.textContent = text;
            return div.innerHTML;
        }

        function render(snap) {
            if (snap.version <= version) return;
            version = snap.version;

            const doc = document.getElementById('doc');
            if (snap.upload.file_name) {
                doc.textContent = snap.upload.file_name + ' (' + snap.upload.chunks_created + ' chunks)';
            }

            const messages = document.getElementById('messages');
            const entries = snap.entries || [];
            if (entries.length === 0 && !snap.query_in_flight && !snap.upload_in_flight) {
                messages.innerHTML = '<div class="placeholder">Upload a document and ask a question to get started.</div>';
            } else {
                let html = '';
                for (const e of entries) {
                    const m = e.message;
                    html += '<div class="message ' + m.kind + '">' + escapeHtml(m.content);
                    const sources = m.sources || [];
                    if (sources.length > 0) {
                        html += '<br><button class="sources-toggle" data-id="' + m.id + '">' +
                            sources.length + ' Sources ' + (e.expanded ? '&#9650;' : '&#9660;') + '</button>';
                        if (e.expanded) {
                            for (const src of sources) {
                                html += '<div class="source">' + src.display_percent + '% match<br>' +
                                    escapeHtml(src.excerpt) + '</div>';
                            }
                        }
                    }
                    html += '</div>';
                }
                if (snap.upload_in_flight) html += '<div class="pending">Uploading...</div>';
                if (snap.query_in_flight) html += '<div class="pending">Thinking...</div>';
                messages.innerHTML = html;
            }

            document.getElementById('send-btn').disabled = snap.query_in_flight;
            document.getElementById('upload-btn').disabled = snap.upload_in_flight;
            window.scrollTo(0, document.body.scrollHeight);
        }

        document.getElementById('messages').addEventListener('click', function(e) {
            const id = e.target.dataset && e.target.dataset.id;
            if (id) fetch('/api/messages/' + encodeURIComponent(id) + '/toggle', {method: 'POST'});
        });

        document.getElementById('query-form').addEventListener('submit', function(e) {
            e.preventDefault();
            const input = document.getElementById('query-input');
            const question = input.value.trim();
            if (!question) return;
            input.value = '';
            fetch('/api/question', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({question: question})
            });
        });

        document.getElementById('upload-form').addEventListener('submit', function(e) {
            e.preventDefault();
            const input = document.getElementById('file-input');
            if (!input.files.length) return;
            const body = new FormData();
            body.append('file', input.files[0]);
            input.value = '';
            fetch('/api/upload', {method: 'POST', body: body});
        });

        const events = new EventSource('/api/events');
        events.addEventListener('snapshot', function(event) {
            render(JSON.parse(event.data));
        });
    </script>
</body>
</html>`

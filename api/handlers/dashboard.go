package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the static operator page. The page only talks to
// the snapshot API; it never touches transport state directly.
type DashboardHandler struct{}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Page handles GET / and GET /dashboard.
func (h *DashboardHandler) Page(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardHTML))
}

// RegisterRoutes registers the dashboard routes on the engine root.
func (h *DashboardHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Page)
	r.GET("/dashboard", h.Page)
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>SocketHub Dashboard</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #1a1a2e; color: #eee; min-height: 100vh; padding: 20px;
        }
        .container { max-width: 1200px; margin: 0 auto; }
        h1 { margin-bottom: 20px; color: #00d4ff; }
        .stats {
            display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px; margin-bottom: 30px;
        }
        .stat-card { background: #16213e; border-radius: 8px; padding: 20px; text-align: center; }
        .stat-value { font-size: 2.5em; font-weight: bold; color: #00d4ff; }
        .stat-label { color: #888; margin-top: 5px; }
        .panel { background: #16213e; border-radius: 8px; padding: 20px; margin-bottom: 30px; }
        .panel h2 { margin-bottom: 15px; color: #00d4ff; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 12px; text-align: left; border-bottom: 1px solid #2a2a4a; }
        th { color: #888; font-weight: 500; }
        .sid { font-family: monospace; color: #00d4ff; }
        .ip { font-family: monospace; color: #aaa; }
        .rooms { display: flex; flex-wrap: wrap; gap: 5px; }
        .room-tag { background: #0f3460; padding: 3px 8px; border-radius: 4px; font-size: 0.85em; }
        .empty { text-align: center; padding: 40px; color: #666; }
        .btn {
            background: #00d4ff; border: none; padding: 10px 20px;
            border-radius: 4px; cursor: pointer; margin-bottom: 20px; margin-right: 10px;
        }
        .btn:hover { background: #00a8cc; }
        .btn-danger { background: #ff4d6d; padding: 5px 12px; margin: 0; }
        .btn-danger:hover { background: #d93654; }
        .status {
            display: inline-block; width: 10px; height: 10px;
            border-radius: 50%; background: #00ff00; margin-right: 8px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1><span class="status"></span>SocketHub Dashboard</h1>
        <button class="btn" onclick="loadData()">Refresh</button>
        <button class="btn" onclick="clearLogs()">Clear Log</button>
        <div class="stats">
            <div class="stat-card">
                <div class="stat-value" id="conn-count">0</div>
                <div class="stat-label">Active Connections</div>
            </div>
            <div class="stat-card">
                <div class="stat-value" id="log-count">0</div>
                <div class="stat-label">Logged Events</div>
            </div>
        </div>
        <div class="panel">
            <h2>Connections</h2>
            <table>
                <thead>
                    <tr>
                        <th>Session ID</th>
                        <th>Client IP</th>
                        <th>Connected At</th>
                        <th>Rooms</th>
                        <th></th>
                    </tr>
                </thead>
                <tbody id="connections-body"></tbody>
            </table>
            <div class="empty" id="conn-empty">No active connections</div>
        </div>
        <div class="panel">
            <h2>Traffic Log</h2>
            <table>
                <thead>
                    <tr>
                        <th>Time</th>
                        <th>Event</th>
                        <th>From</th>
                        <th>Room</th>
                    </tr>
                </thead>
                <tbody id="logs-body"></tbody>
            </table>
            <div class="empty" id="log-empty">No logged events</div>
        </div>
    </div>
    <script>
        async function loadData() {
            const connRes = await fetch('/api/connections');
            const connData = await connRes.json();

            document.getElementById('conn-count').textContent = connData.count;
            const connBody = document.getElementById('connections-body');
            const connEmpty = document.getElementById('conn-empty');

            if (connData.connections.length === 0) {
                connBody.innerHTML = '';
                connEmpty.style.display = 'block';
            } else {
                connEmpty.style.display = 'none';
                connBody.innerHTML = connData.connections.map(c => ` + "`" + `
                    <tr>
                        <td class="sid">${c.sid}</td>
                        <td class="ip">${c.client_ip || '-'}</td>
                        <td>${new Date(c.connected_at).toLocaleString()}</td>
                        <td>
                            <div class="rooms">
                                ${c.rooms.map(r => ` + "`" + `<span class="room-tag">${r}</span>` + "`" + `).join('')}
                            </div>
                        </td>
                        <td><button class="btn btn-danger" onclick="disconnect('${c.sid}')">Disconnect</button></td>
                    </tr>
                ` + "`" + `).join('');
            }

            const logRes = await fetch('/api/logs');
            const logData = await logRes.json();

            document.getElementById('log-count').textContent = logData.count;
            const logBody = document.getElementById('logs-body');
            const logEmpty = document.getElementById('log-empty');

            if (logData.logs.length === 0) {
                logBody.innerHTML = '';
                logEmpty.style.display = 'block';
            } else {
                logEmpty.style.display = 'none';
                logBody.innerHTML = logData.logs.slice().reverse().map(l => ` + "`" + `
                    <tr>
                        <td>${new Date(l.timestamp).toLocaleTimeString()}</td>
                        <td>${l.event}</td>
                        <td class="sid">${l.from || '-'}</td>
                        <td>${l.room || '-'}</td>
                    </tr>
                ` + "`" + `).join('');
            }
        }
        async function clearLogs() {
            await fetch('/api/logs/clear', { method: 'POST' });
            loadData();
        }
        async function disconnect(sid) {
            await fetch('/api/disconnect/' + sid, { method: 'POST' });
            loadData();
        }
        loadData();
        setInterval(loadData, 5000);
    </script>
</body>
</html>`

package main

// pageHTML is the demo shell: styles, the live container, and the client
// glue that binds DOM events to action events and applies the patch
// stream. Format arguments are the room ID (title, socket path).
const pageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Alerts - room %s</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 48rem; }
table.alert-list { width: 100%%; border-collapse: collapse; }
.alert-list th, .alert-list td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #ddd; }
.badge { padding: .1rem .5rem; border-radius: .6rem; font-size: .8rem; color: #fff; }
.badge-info { background: #2b6cb0; } .badge-warning { background: #b7791f; } .badge-critical { background: #c53030; }
button { margin-right: .3rem; } button.danger { color: #c53030; }
.modal { position: fixed; inset: 0; background: rgba(0,0,0,.4); display: flex; align-items: center; justify-content: center; }
.modal-body { background: #fff; padding: 1.5rem; border-radius: .5rem; min-width: 20rem; }
.field { margin-bottom: .8rem; } .field label { display: block; font-size: .85rem; }
.field input, .field textarea, .field select { width: 100%%; }
.field-error { color: #c53030; font-size: .8rem; }
#notices { position: fixed; top: 1rem; right: 1rem; }
.toast { padding: .6rem 1rem; margin-bottom: .4rem; border-radius: .3rem; color: #fff; background: #2b6cb0; }
.toast.success { background: #276749; } .toast.warning { background: #b7791f; } .toast.error { background: #c53030; }
</style>
</head>
<body>
<div id="live-root"></div>
<div id="notices"></div>
<script>
(function () {
  var root = document.getElementById("live-root");
  var notices = document.getElementById("notices");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var sock;
  var nodes = {};

  function connect() {
    sock = new WebSocket(proto + location.host + "/live/%s");
    sock.onmessage = function (e) { handle(JSON.parse(e.data)); };
    sock.onclose = function () { setTimeout(connect, 1000); };
  }

  function handle(frame) {
    if (frame.kind === "render") {
      root.innerHTML = frame.markup;
      index(root);
    } else if (frame.kind === "patch") {
      frame.ops.forEach(apply);
    } else if (frame.kind === "notice") {
      toast(frame.payload);
    }
  }

  // index walks the rendered tree, registering elements by data-live-id
  // and text nodes by their preceding lr marker comment. Markers are
  // removed so child indices line up with patch operations.
  function index(container) {
    nodes = {};
    var markers = [];
    var walker = document.createTreeWalker(container, NodeFilter.SHOW_ELEMENT | NodeFilter.SHOW_COMMENT);
    for (var n = walker.nextNode(); n; n = walker.nextNode()) {
      if (n.nodeType === Node.ELEMENT_NODE) {
        var id = n.getAttribute("data-live-id");
        if (id) nodes[id] = n;
      } else if (n.nodeValue.indexOf("lr:") === 0) {
        markers.push(n);
      }
    }
    markers.forEach(function (m) {
      var id = m.nodeValue.slice(3);
      var next = m.nextSibling;
      if (!next || next.nodeType !== Node.TEXT_NODE) {
        next = document.createTextNode("");
        m.parentNode.insertBefore(next, m.nextSibling);
      }
      nodes[id] = next;
      m.remove();
    });
  }

  function materialize(w) {
    var el;
    if (w.tag) {
      el = document.createElement(w.tag);
      if (w.id) { el.setAttribute("data-live-id", w.id); nodes[w.id] = el; }
      Object.keys(w.attrs || {}).forEach(function (k) { el.setAttribute(k, w.attrs[k]); });
      (w.children || []).forEach(function (c) { el.appendChild(materialize(c)); });
    } else if (w.raw) {
      var tpl = document.createElement("template");
      tpl.innerHTML = w.text;
      el = tpl.content;
      if (w.id) nodes[w.id] = el.firstChild;
    } else {
      el = document.createTextNode(w.text || "");
      if (w.id) nodes[w.id] = el;
    }
    return el;
  }

  function insertAt(parent, node, idx) {
    var ref = parent.childNodes[idx];
    if (ref === undefined) parent.appendChild(node);
    else parent.insertBefore(node, ref);
  }

  function apply(op) {
    var target = nodes[op.id];
    switch (op.op) {
    case "set-text":
      if (target) target.nodeValue = op.value;
      break;
    case "set-attr":
      if (target) target.setAttribute(op.key, op.value);
      break;
    case "remove-attr":
      if (target) target.removeAttribute(op.key);
      break;
    case "insert-node":
      insertAt(nodes[op.parent], materialize(op.node), op.index || 0);
      break;
    case "remove-node":
      if (target) { target.remove(); delete nodes[op.id]; }
      break;
    case "move-node":
      if (target) insertAt(nodes[op.parent], target, op.index || 0);
      break;
    case "replace-node":
      if (target) {
        var repl = materialize(op.node);
        target.replaceWith(repl);
        delete nodes[op.id];
      }
      break;
    }
  }

  function toast(p) {
    var el = document.createElement("div");
    el.className = "toast " + (p.level || "info");
    el.textContent = (p.title ? p.title + ": " : "") + p.message;
    notices.appendChild(el);
    setTimeout(function () { el.remove(); }, 4000);
  }

  function send(action, args) {
    if (sock && sock.readyState === WebSocket.OPEN) {
      sock.send(JSON.stringify({ action: action, args: args || {} }));
    }
  }

  document.addEventListener("click", function (e) {
    var btn = e.target.closest("[data-action]");
    if (!btn) return;
    var args = {};
    Array.prototype.forEach.call(btn.attributes, function (a) {
      if (a.name.indexOf("data-arg-") === 0) args[a.name.slice(9)] = a.value;
    });
    send(btn.getAttribute("data-action"), args);
  });

  document.addEventListener("input", function (e) {
    var el = e.target.closest("[data-input]");
    if (!el) return;
    send(el.getAttribute("data-input"), { field: el.name, value: el.value });
  });

  document.addEventListener("submit", function (e) {
    var form = e.target.closest("[data-submit]");
    if (!form) return;
    e.preventDefault();
    send(form.getAttribute("data-submit"), {});
  });

  connect();
})();
</script>
</body>
</html>
`

package server

const uiAccordionJS = `
(function () {
  'use strict';

  const HOVER_ABORTS = new Map();
  const COUNTDOWN_POLL_MS = 100;
  const LOADING_POLL_MS = 500;

  function api(method, path) {
    return fetch(path, { method: method, headers: { 'Accept': 'application/json' } })
      .then(function (resp) {
        return resp.json().then(function (body) {
          if (!resp.ok) throw new Error(body.error || ('http ' + resp.status));
          return body;
        });
      });
  }

  function instanceBase(id) {
    return '/api/v1/instances/' + encodeURIComponent(id);
  }

  function contentEl(id) {
    return document.getElementById(id + '-content');
  }

  function setContent(id, html) {
    const el = contentEl(id);
    if (!el) return;
    el.innerHTML = html;
    bindContent(id);
  }

  function ensureFonts(hrefs) {
    (hrefs || []).forEach(function (href) {
      const present = Array.from(document.querySelectorAll('link[rel="stylesheet"]'))
        .some(function (link) { return link.getAttribute('href') === href; });
      if (present) return;
      const link = document.createElement('link');
      link.rel = 'stylesheet';
      link.href = href;
      document.head.appendChild(link);
    });
  }

  // replaceItem swaps in server markup. prepare runs on the new element
  // before it enters the document.
  function replaceItem(id, index, html, prepare) {
    const current = document.getElementById(id + '-item-' + index);
    if (!current || !html) return null;
    const table = document.createElement('table');
    table.innerHTML = html;
    const next = table.querySelector('tbody');
    if (!next) return null;
    if (prepare) prepare(next, current);
    current.replaceWith(next);
    bindItem(id, next);
    return next;
  }

  function itemIndex(row) {
    const item = row.closest('.accordion-item');
    return item ? item.dataset.index : null;
  }

  function toggle(id, row) {
    const index = itemIndex(row);
    if (index === null || row.classList.contains('no-answer')) return;
    cancelHover(id, index);
    api('POST', instanceBase(id) + '/items/' + index + '/toggle').then(function (res) {
      const item = replaceItem(id, index, res.html, function (next, current) {
        if (res.expanded) {
          next.classList.remove('active');
          return;
        }
        const old = current.querySelector('.accordion-answer-wrapper');
        if (old) {
          old.style.transition = 'none';
          void old.offsetHeight;
        }
      });
      if (!item) return;
      const wrapper = item.querySelector('.accordion-answer-wrapper');
      if (wrapper) {
        wrapper.style.transition = res.transition;
        void wrapper.offsetHeight;
      }
      if (res.expanded) item.classList.add('active');
      const content = item.querySelector('.accordion-answer-content');
      if (content && res.animation) {
        content.style.animation = res.animation;
        const ms = parseFloat(item.dataset.duration || '0') * 1000;
        setTimeout(function () { content.style.animation = ''; }, ms);
      }
      if (res.viewed === 'written' || res.viewed === 'scheduled') {
        setTimeout(function () { refreshInstance(id); }, res.viewed === 'written' ? 0 : (res.viewed_delay_ms || 0) + 50);
      }
    }).catch(function (err) { console.error('[Accordion] toggle failed', err); });
  }

  function hover(id, row) {
    const index = itemIndex(row);
    if (index === null || row.classList.contains('no-answer')) return;
    const key = id + ':' + index;
    if (HOVER_ABORTS.has(key)) return;
    const ctrl = new AbortController();
    HOVER_ABORTS.set(key, ctrl);
    fetch(instanceBase(id) + '/items/' + index + '/hover', { method: 'POST', signal: ctrl.signal })
      .then(function (resp) { return resp.json(); })
      .then(function (res) {
        HOVER_ABORTS.delete(key);
        if (res.materialized) replaceItem(id, index, res.html);
      })
      .catch(function () { HOVER_ABORTS.delete(key); });
  }

  function cancelHover(id, index) {
    const key = id + ':' + index;
    const ctrl = HOVER_ABORTS.get(key);
    if (!ctrl) return;
    HOVER_ABORTS.delete(key);
    ctrl.abort();
    fetch(instanceBase(id) + '/items/' + index + '/hover', { method: 'DELETE' }).catch(function () {});
  }

  function loadPlaceholder(id, el) {
    let kind = 'image';
    let data = el.dataset.originalUrl;
    if (el.classList.contains('lazy-youtube-placeholder')) {
      kind = 'youtube';
      data = el.dataset.videoData;
    }
    const inCell = el.classList.contains('accordion-image-content') ? '1' : '0';
    const q = new URLSearchParams({ instance: id, kind: kind, data: data || '', in_cell: inCell });
    fetch('/api/v1/media?' + q.toString())
      .then(function (resp) { return resp.json(); })
      .then(function (res) {
        const span = document.createElement('div');
        span.innerHTML = res.html || res.fallback || '';
        const img = span.querySelector('img');
        if (img && res.fallback) {
          img.addEventListener('error', function () { img.outerHTML = res.fallback; });
        }
        el.replaceWith.apply(el, Array.from(span.childNodes));
      });
  }

  function bindItem(id, item) {
    const row = item.querySelector('.accordion-question-row');
    if (row) {
      row.addEventListener('click', function (ev) {
        if (ev.target.closest('a')) return;
        toggle(id, row);
      });
      row.addEventListener('mouseenter', function () { hover(id, row); });
      row.addEventListener('mouseleave', function () { cancelHover(id, itemIndex(row)); });
    }
    item.querySelectorAll('.lazy-image-placeholder, .lazy-youtube-placeholder').forEach(function (el) {
      el.addEventListener('click', function (ev) {
        ev.stopPropagation();
        loadPlaceholder(id, el);
      });
    });
  }

  function bindContent(id) {
    const el = contentEl(id);
    if (!el) return;
    el.querySelectorAll('.accordion-item').forEach(function (item) { bindItem(id, item); });
    const panel = el.querySelector('.auto-retry');
    if (panel) watchCountdown(id, panel);
    if (el.querySelector('.loading-message .spinner')) {
      setTimeout(function () { refreshInstance(id).catch(function () {}); }, LOADING_POLL_MS);
    }
  }

  function refreshInstance(id) {
    return api('GET', instanceBase(id)).then(function (view) {
      ensureFonts(view.fonts);
      setContent(id, view.html);
      return view;
    });
  }

  function watchCountdown(id, panel) {
    const span = document.getElementById(id + '-countdown');
    panel.addEventListener('mouseenter', function () { api('POST', instanceBase(id) + '/retry/pause').catch(function () {}); });
    panel.addEventListener('mouseleave', function () { api('POST', instanceBase(id) + '/retry/resume').catch(function () {}); });
    const timer = setInterval(function () {
      api('GET', instanceBase(id) + '/retry').then(function (st) {
        if (!st.pending || st.fired || st.stopped) {
          clearInterval(timer);
          refreshInstance(id);
          return;
        }
        if (span) span.textContent = st.seconds;
      }).catch(function () { clearInterval(timer); });
    }, COUNTDOWN_POLL_MS);
  }

  function applySearch(res) {
    if (!res || res.stale) return;
    ensureFonts(res.fonts);
    Object.keys(res.contents || {}).forEach(function (id) { setContent(id, res.contents[id]); });
  }

  function syncInputs(scope, value) {
    if (scope !== 'all') return;
    document.querySelectorAll('.accordion-search-input[data-scope="all"]').forEach(function (input) {
      if (input.value !== value) input.value = value;
    });
  }

  function typePlaceholder(input) {
    const text = input.dataset.placeholder || '';
    const speed = parseInt(input.dataset.placeholderSpeed || '80', 10);
    const loop = parseInt(input.dataset.placeholderLoop || '2000', 10);
    if (!text) return;
    let pos = 0;
    let timer = null;
    function step() {
      if (document.activeElement === input) {
        input.setAttribute('placeholder', text);
        timer = setTimeout(step, loop);
        return;
      }
      pos++;
      input.setAttribute('placeholder', text.slice(0, pos));
      if (pos >= text.length) {
        pos = 0;
        timer = setTimeout(step, loop);
        return;
      }
      timer = setTimeout(step, speed);
    }
    input.addEventListener('focus', function () {
      clearTimeout(timer);
      input.setAttribute('placeholder', text);
    });
    input.addEventListener('blur', function () {
      clearTimeout(timer);
      timer = setTimeout(step, speed);
    });
    step();
  }

  function bindWrapper(wrapper) {
    const id = wrapper.dataset.instance;
    const input = wrapper.querySelector('.accordion-search-input');
    if (input) {
      typePlaceholder(input);
      input.addEventListener('input', function () {
        const term = input.value;
        syncInputs(input.dataset.scope, term);
        api('GET', instanceBase(id) + '/search?q=' + encodeURIComponent(term))
          .then(applySearch)
          .catch(function (err) { console.error('[Accordion] search failed', err); });
      });
    }
    wrapper.querySelectorAll('.accordion-common-search-item').forEach(function (chip) {
      chip.addEventListener('click', function () {
        const label = chip.dataset.term || '';
        api('POST', instanceBase(id) + '/chip?label=' + encodeURIComponent(label)).then(function (res) {
          if (input) input.value = res.result ? res.result.term : '';
          syncInputs(wrapper.dataset.scope, input ? input.value : '');
          applySearch(res);
        });
      });
    });
    bindContent(id);
  }

  document.querySelectorAll('.accordion-wrapper[data-instance]').forEach(bindWrapper);
})();
`

package server

const uiAccordionCSS = `
:root {
  --bg: #f4f7f5;
  --card: #ffffff;
  --line: #d8e1dc;
  --muted: #5f6f67;
  --accent: #1b7f5a;
  --odd: #ffffff;
  --even: #f7faf8;
}
body { margin: 0; background: var(--bg); font-family: Arial, Helvetica, sans-serif; color: #1f2a24; }
main { max-width: 1100px; margin: 0 auto; padding: 24px 16px; }
h1 { margin: 0 0 16px; font-size: 26px; }
.accordion-anchor { margin-bottom: 28px; }
.accordion-search-input {
  width: 100%;
  box-sizing: border-box;
  border: 1px solid var(--line);
  border-radius: 8px;
  padding: 10px 12px;
  font-size: 15px;
  margin-bottom: 8px;
}
.accordion-common-searches { display: flex; flex-wrap: wrap; gap: 6px; margin-bottom: 10px; }
.accordion-common-search-item {
  font-size: 13px;
  padding: 3px 10px;
  border-radius: 999px;
  background: #e7f3ed;
  color: #26644b;
  cursor: pointer;
  user-select: none;
}
.accordion-common-search-item:hover { background: #d2eadf; }
.accordion-container { background: var(--card); border: 1px solid var(--line); border-radius: 10px; overflow: hidden; }
.accordion-table { width: 100%; border-collapse: collapse; table-layout: auto; }
.accordion-item.hidden { display: none; }
.accordion-question-row { cursor: pointer; }
.accordion-question-row.no-answer { cursor: default; }
.accordion-question-row.odd-row { background: var(--odd); }
.accordion-question-row.even-row { background: var(--even); }
.accordion-question-row td { padding: 10px 12px; border-bottom: 1px solid var(--line); vertical-align: middle; }
.accordion-item.last-visible-item .accordion-question-row td { border-bottom: none; }
.accordion-header-item .accordion-question-row { background: #e9efec; font-weight: 700; cursor: default; }
.accordion-auto-number-cell { color: var(--muted); font-variant-numeric: tabular-nums; }
.accordion-icon-cell { width: 28px; }
.accordion-toggle-icon { display: inline-block; transition: transform 0.2s ease; color: var(--muted); }
.accordion-item.active .accordion-toggle-icon { transform: rotate(180deg); }
.accordion-image-cell img { border-radius: 4px; }
.accordion-answer-row td { padding: 0; }
.accordion-answer-wrapper { max-height: 0; overflow: hidden; }
.accordion-item.active .accordion-answer-wrapper { max-height: 4000px; }
.accordion-answer-content { padding: 12px 16px; line-height: 1.5; overflow-wrap: anywhere; }
.accordion-item.active .accordion-answer-row td { border-bottom: 1px solid var(--line); }
.accordion-search-highlight { background: #ffe79a; color: #2e2200; padding: 0 1px; border-radius: 2px; }
.accordion-viewed-badge {
  display: inline-block;
  margin-left: 8px;
  padding: 1px 7px;
  border-radius: 999px;
  font-size: 11px;
  color: #fff;
  vertical-align: middle;
}
.accordion-unseen-indicator { margin-left: 4px; color: #e67e22; font-size: 12px; }
.accordion-heatmap-dot {
  display: inline-block;
  width: 9px;
  height: 9px;
  border-radius: 50%;
  margin-right: 6px;
  vertical-align: middle;
}
.no-results-message { padding: 14px; color: var(--muted); text-align: center; }
.loading-message { padding: 24px; text-align: center; color: var(--muted); }
.spinner {
  width: 28px;
  height: 28px;
  margin: 0 auto 10px;
  border: 3px solid var(--line);
  border-top-color: var(--accent);
  border-radius: 50%;
  animation: spin 0.9s linear infinite;
}
.error-message { padding: 16px; background: #fff4e5; border: 1px solid #f0c36d; border-radius: 8px; }
.accordion-countdown { font-weight: bold; color: #d39e00; }
.lazy-image-placeholder, .lazy-youtube-placeholder { cursor: pointer; }
@keyframes spin { to { transform: rotate(360deg); } }
@keyframes fadeIn { from { opacity: 0; } to { opacity: 1; } }
@keyframes slideFromLeft { from { opacity: 0; transform: translateX(-30px); } to { opacity: 1; transform: none; } }
@keyframes slideFromRight { from { opacity: 0; transform: translateX(30px); } to { opacity: 1; transform: none; } }
@keyframes slideFromTop { from { opacity: 0; transform: translateY(-30px); } to { opacity: 1; transform: none; } }
@keyframes slideFromBottom { from { opacity: 0; transform: translateY(30px); } to { opacity: 1; transform: none; } }
@keyframes bounceFromLeft { 0% { opacity: 0; transform: translateX(-40px); } 60% { opacity: 1; transform: translateX(8px); } 100% { transform: none; } }
@keyframes bounceFromRight { 0% { opacity: 0; transform: translateX(40px); } 60% { opacity: 1; transform: translateX(-8px); } 100% { transform: none; } }
@keyframes bounceFromTop { 0% { opacity: 0; transform: translateY(-40px); } 60% { opacity: 1; transform: translateY(8px); } 100% { transform: none; } }
@keyframes bounceFromBottom { 0% { opacity: 0; transform: translateY(40px); } 60% { opacity: 1; transform: translateY(-8px); } 100% { transform: none; } }
@keyframes zoomIn { from { opacity: 0; transform: scale(0.85); } to { opacity: 1; transform: none; } }
@keyframes blurIn { from { opacity: 0; filter: blur(6px); } to { opacity: 1; filter: none; } }
@keyframes rotateIn { from { opacity: 0; transform: rotate(-6deg); } to { opacity: 1; transform: none; } }
@keyframes elasticIn { 0% { transform: scale(0.6); opacity: 0; } 60% { transform: scale(1.05); opacity: 1; } 80% { transform: scale(0.98); } 100% { transform: none; } }
@media (max-width: 760px) { .accordion-question-row td { padding: 8px; font-size: 14px; } }
`

package host

// bindingName is the Runtime.addBinding hook the page script calls to
// deliver key, viewport and SPA navigation events to Go.
const bindingName = "__surfmate_emit"

// bootstrapJS installs the page-side half of the chrome host: an element
// registry keyed by integer refs, a query/describe/act API, the hint overlay
// painter, and capturing listeners that forward input through the binding.
// It is injected on every new document and is idempotent.
const bootstrapJS = `(() => {
if (window.__surfmate) return;
const S = {
	refs: [null],
	known: new WeakMap(),
	active: false,
};
window.__surfmate = S;

S.register = (el) => {
	let ref = S.known.get(el);
	if (ref) return ref;
	ref = S.refs.length;
	S.refs.push(el);
	S.known.set(el, ref);
	return ref;
};

const stablePath = (el, scope) => {
	const steps = [];
	let cur = el;
	while (cur && cur !== scope && cur !== document.body && cur !== document.documentElement && steps.length < 6) {
		const parent = cur.parentElement;
		let nth = 0, nthOfTag = 0, tagCount = 0;
		if (parent) {
			const kids = parent.children;
			for (let i = 0; i < kids.length; i++) {
				if (kids[i].tagName === cur.tagName) tagCount++;
				if (kids[i] === cur) { nth = i + 1; nthOfTag = tagCount; }
			}
		}
		steps.unshift({
			tag: cur.tagName.toLowerCase(),
			id: cur.id || '',
			classes: Array.from(cur.classList),
			nth: nth,
			nthOfTag: nthOfTag,
			tagCount: tagCount,
		});
		cur = parent;
	}
	return steps;
};

const describe = (el, scope, order) => {
	const r = el.getBoundingClientRect();
	const cs = getComputedStyle(el);
	const visible = (r.width > 0 || r.height > 0) &&
		cs.visibility !== 'hidden' && cs.display !== 'none' && cs.opacity !== '0';
	let text = (el.innerText || el.value || '').trim().replace(/\s+/g, ' ');
	if (text.length > 200) text = text.slice(0, 200);
	return {
		ref: S.register(el),
		tag: el.tagName.toLowerCase(),
		id: el.id || '',
		classes: Array.from(el.classList),
		role: el.getAttribute('role') || '',
		name: el.getAttribute('aria-label') || '',
		placeholder: el.getAttribute('placeholder') || '',
		href: el.getAttribute('href') || '',
		text: text,
		rect: {x: r.x, y: r.y, w: r.width, h: r.height},
		visible: visible,
		order: order,
		path: stablePath(el, scope),
	};
};

S.query = (sel, scopeRef) => {
	const scope = scopeRef === 0 ? document : S.refs[scopeRef];
	if (!scope || (scopeRef !== 0 && !scope.isConnected)) return [];
	let els;
	try { els = Array.from(scope.querySelectorAll(sel)); } catch (e) { return []; }
	const pos = new Map();
	document.querySelectorAll('*').forEach((el, i) => pos.set(el, i));
	els.sort((a, b) => (pos.get(a) || 0) - (pos.get(b) || 0));
	const scopeEl = scopeRef === 0 ? document.body : scope;
	return els.map((el) => describe(el, scopeEl, pos.get(el) || 0));
};

S.describe = (ref) => {
	const el = S.refs[ref];
	if (!el || !el.isConnected) return {ref: 0};
	return describe(el, document.body, 0);
};

S.act = (ref, kind) => {
	const el = S.refs[ref];
	if (!el || !el.isConnected) return false;
	if (kind === 'click') el.click();
	else if (kind === 'focus') el.focus();
	else if (kind === 'scroll') el.scrollIntoView({block: 'center', behavior: 'instant'});
	else return false;
	return true;
};

S.show = (hints) => {
	S.clear();
	S.active = true;
	const ov = document.createElement('div');
	ov.id = '__surfmate_overlay';
	ov.style.cssText = 'position:fixed;left:0;top:0;right:0;bottom:0;z-index:2147483646;pointer-events:none;font:12px/1.4 monospace;';
	for (const h of hints) {
		const b = document.createElement('div');
		b.textContent = h.label ? h.key + ' ' + h.label : h.key;
		b.style.cssText = 'position:fixed;padding:1px 4px;border-radius:3px;background:#1c1c1c;color:#ffd75f;border:1px solid #ffd75f;white-space:nowrap;';
		b.style.left = h.box.x + 'px';
		b.style.top = h.box.y + 'px';
		if (h.scale && h.scale !== 1) {
			b.style.transform = 'scale(' + h.scale + ')';
			b.style.transformOrigin = 'top left';
		}
		if (h.faded) b.style.opacity = '0.5';
		ov.appendChild(b);
	}
	document.documentElement.appendChild(ov);
};

S.clear = () => {
	S.active = false;
	const ov = document.getElementById('__surfmate_overlay');
	if (ov) ov.remove();
	const m = document.getElementById('__surfmate_message');
	if (m) m.remove();
};

S.message = (text) => {
	const old = document.getElementById('__surfmate_message');
	if (old) old.remove();
	const m = document.createElement('div');
	m.id = '__surfmate_message';
	m.textContent = text;
	m.style.cssText = 'position:fixed;left:50%;bottom:24px;transform:translateX(-50%);z-index:2147483647;' +
		'padding:6px 14px;border-radius:4px;background:#1c1c1c;color:#eee;border:1px solid #555;' +
		'font:13px/1.4 monospace;pointer-events:none;max-width:80vw;white-space:nowrap;overflow:hidden;text-overflow:ellipsis;';
	document.documentElement.appendChild(m);
};

const post = (payload) => {
	if (window.` + bindingName + `) window.` + bindingName + `(JSON.stringify(payload));
};

const hintKey = /^(.|Escape|Enter|Backspace|ArrowUp|ArrowDown|ArrowLeft|ArrowRight)$/;
document.addEventListener('keydown', (e) => {
	const t = e.target;
	const editing = t && (t.tagName === 'INPUT' || t.tagName === 'TEXTAREA' || t.tagName === 'SELECT' || t.isContentEditable);
	if (editing && e.key !== 'Escape') return;
	if (e.ctrlKey || e.metaKey || e.altKey) return;
	post({type: 'key', key: e.key});
	if (S.active && hintKey.test(e.key)) {
		e.preventDefault();
		e.stopImmediatePropagation();
	}
}, true);

let geoPending = false;
const geo = () => {
	if (geoPending) return;
	geoPending = true;
	requestAnimationFrame(() => { geoPending = false; post({type: 'viewport'}); });
};
addEventListener('scroll', geo, {passive: true, capture: true});
addEventListener('resize', geo, {passive: true});

const nav = () => post({type: 'nav', url: location.href});
addEventListener('popstate', nav);
const origPush = history.pushState;
history.pushState = function() { origPush.apply(this, arguments); nav(); };
const origReplace = history.replaceState;
history.replaceState = function() { origReplace.apply(this, arguments); nav(); };
})();`

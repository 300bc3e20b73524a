package rod

import "github.com/fwojciec/pricecap"

// annotateScript stamps computed style and geometry onto every element that
// directly owns digit-bearing text, and the viewport size onto the root
// element. Its single argument is the attribute-name list from
// annotationNames, so the names stay defined in one place.
const annotateScript = `(names) => {
  const [visible, fontSize, fontWeight, opacity, lineThrough, rect, viewport] = names;
  const root = document.documentElement;
  root.setAttribute(viewport, window.innerWidth + ',' + window.innerHeight);

  const walker = document.createTreeWalker(document.body || root, NodeFilter.SHOW_TEXT);
  const seen = new Set();
  let node;
  while ((node = walker.nextNode())) {
    if (!/\d/.test(node.nodeValue)) continue;
    const el = node.parentElement;
    if (!el || seen.has(el)) continue;
    seen.add(el);

    const cs = getComputedStyle(el);
    let op = 1;
    let struck = false;
    for (let a = el; a; a = a.parentElement) {
      const s = getComputedStyle(a);
      op *= parseFloat(s.opacity);
      if ((s.textDecorationLine || '').includes('line-through')) struck = true;
    }
    const r = el.getBoundingClientRect();
    const shown = cs.display !== 'none' && cs.visibility === 'visible' &&
      op > 0 && r.width > 0 && r.height > 0;

    el.setAttribute(visible, String(shown));
    el.setAttribute(fontSize, String(parseFloat(cs.fontSize) || 0));
    el.setAttribute(fontWeight, String(parseInt(cs.fontWeight, 10) || 400));
    el.setAttribute(opacity, op.toFixed(3));
    el.setAttribute(lineThrough, String(struck));
    el.setAttribute(rect, [r.top, r.left, r.width, r.height].map(Math.round).join(','));
  }
  return seen.size;
}`

// annotationNames returns the attribute names in the order annotateScript
// destructures them.
func annotationNames() []string {
	return append(pricecap.Annotations(), pricecap.AttrViewport)
}

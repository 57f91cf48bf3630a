// Package script holds the in-page functions the CDP based backends call on
// element handles. Each is a function declaration with the element bound to
// this.
package script

const (
	// Text returns the rendered text of the element.
	Text = `function() { return this.innerText || this.textContent || ""; }`

	// Displayed reports whether the element takes up space and is not hidden.
	Displayed = `function() {
	const s = window.getComputedStyle(this);
	if (s.display === "none" || s.visibility === "hidden" || s.opacity === "0") return false;
	const r = this.getBoundingClientRect();
	return r.width > 0 || r.height > 0;
}`

	// Enabled reports whether the element is not disabled.
	Enabled = `function() { return !this.disabled; }`

	// Attribute returns {present, value}. For "value" the live property wins
	// over the markup attribute.
	Attribute = `function(name) {
	if (name === "value" && "value" in this) return {present: true, value: String(this.value)};
	if (!this.hasAttribute(name)) return {present: false, value: ""};
	return {present: true, value: this.getAttribute(name)};
}`

	// CSSValue returns the computed value of a CSS property.
	CSSValue = `function(prop) { return window.getComputedStyle(this).getPropertyValue(prop); }`

	// Clear empties an input and fires the events frameworks listen to.
	Clear = `function() {
	if ("value" in this) this.value = "";
	else if (this.isContentEditable) this.textContent = "";
	this.dispatchEvent(new Event("input", {bubbles: true}));
	this.dispatchEvent(new Event("change", {bubbles: true}));
	return true;
}`

	// Interceptor scrolls the element into view and returns the outer HTML of
	// whatever sits on top of its centre point, or "" when the element itself
	// would receive a click there.
	Interceptor = `function() {
	this.scrollIntoView({block: "center", inline: "center"});
	const r = this.getBoundingClientRect();
	const hit = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
	if (!hit || hit === this || this.contains(hit)) return "";
	return hit.outerHTML.slice(0, 160);
}`
)

// AttributeResult is the shape returned by Attribute.
type AttributeResult struct {
	Present bool   `json:"present"`
	Value   string `json:"value"`
}

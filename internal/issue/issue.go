// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/term"
)

const (
	TemplateNotFoundId Id = iota + 1
	TemplateParseErrorId
	UnknownCommandId
	ProjectNotFoundId
	ComponentNotFoundId
	ComponentFailedId
	CatalogUnavailableId
	ConfigLoadFailedId
	ProfileWriteFailedId
	PermissionDeniedId
)

type (
	// Id identifies an issue in the catalog.
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as Markdown using the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

// StyleFor returns the glamour style to render issues with on f: "dark" on a
// terminal and "notty" otherwise.
func StyleFor(f *os.File) string {
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return "dark"
	}
	return "notty"
}

var (
	render = glamour.Render

	templateNotFoundIssue = &Issue{
		id: TemplateNotFoundId,
		mdMsg: `
# No deployment template found!

devs looks for a template describing your projects before it registers their commands.

## Search order:
1. The ` + "`--template`" + ` / ` + "`-t`" + ` flag
2. The ` + "`DEVS_TEMPLATE`" + ` environment variable
3. ` + "`s.yaml`, `s.yml`, `s.cue`, `s.toml`" + ` in the current directory

## Things you can try:
- Run devs from the directory that holds your template
- Point at it explicitly:
~~~
$ devs -t ./deploy/s.yaml api deploy
~~~`,
		docLinks: []HttpLink{"https://devs-cli.dev/docs/templates"},
	}

	templateParseErrorIssue = &Issue{
		id: TemplateParseErrorId,
		mdMsg: `
# Failed to parse the template!

The template file contains syntax errors or has an unexpected shape.

## Things you can try:
- Check the error message above for the line and column
- Make sure the root of the file is a mapping
- Declare each project under ` + "`services`" + ` with a ` + "`component`" + `:
~~~yaml
services:
  api:
    component: fc
    provider: alibaba
~~~`,
		docLinks: []HttpLink{"https://devs-cli.dev/docs/templates"},
	}

	unknownCommandIssue = &Issue{
		id: UnknownCommandId,
		mdMsg: `
# Unknown command!

The first argument is neither a built-in command nor a project or method from your template.

## Things you can try:
- List what is available:
~~~
$ devs --help
~~~
- Check the project names declared in your template
- Run a component method directly:
~~~
$ devs exec -- deploy
~~~`,
	}

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# Project not found!

The project you named is not declared in the template.

## Things you can try:
- Check for typos in the project name
- Make sure the project declares a ` + "`component`",
	}

	componentNotFoundIssue = &Issue{
		id: ComponentNotFoundId,
		mdMsg: `
# Component plugin not found!

devs hands each project command to a component plugin found on your PATH.

## Things you can try:
- Install the plugin for the component (for example ` + "`devs-component-fc`" + `)
- Change the lookup prefix:
~~~
$ devs config set delegate.plugin_prefix my-prefix-
~~~`,
	}

	componentFailedIssue = &Issue{
		id: ComponentFailedId,
		mdMsg: `
# Component command failed!

The component plugin ran but exited with a failure.

## Things you can try:
- Re-run with verbose output:
~~~
$ devs --verbose api deploy
~~~
- Check the credentials and region the component uses`,
	}

	catalogUnavailableIssue = &Issue{
		id: CatalogUnavailableId,
		mdMsg: `
# Command catalog unavailable!

Method descriptions could not be fetched, so project help lists no methods.
Commands are still forwarded to the component.

## Things you can try:
- Check your network connection
- Check the catalog URL:
~~~
$ devs config show
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show where devs looks for it:
~~~
$ devs config path
~~~
- Recreate it with defaults:
~~~
$ devs config init
~~~`,
	}

	profileWriteFailedIssue = &Issue{
		id: ProfileWriteFailedId,
		mdMsg: `
# Failed to write the user profile!

Preferences such as the catalog locale live in ` + "`set-config.yml`" + ` under the config directory.

## Things you can try:
- Check that the config directory is writable
- Set the value again:
~~~
$ devs config set locale en
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

devs could not read or execute a file it needs.

## Things you can try:
- Check the permissions of the template and the component plugin
- Make the plugin executable:
~~~
$ chmod +x "$(command -v devs-component-fc)"
~~~`,
	}

	issues = map[Id]*Issue{
		templateNotFoundIssue.Id():   templateNotFoundIssue,
		templateParseErrorIssue.Id(): templateParseErrorIssue,
		unknownCommandIssue.Id():     unknownCommandIssue,
		projectNotFoundIssue.Id():    projectNotFoundIssue,
		componentNotFoundIssue.Id():  componentNotFoundIssue,
		componentFailedIssue.Id():    componentFailedIssue,
		catalogUnavailableIssue.Id(): catalogUnavailableIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		profileWriteFailedIssue.Id(): profileWriteFailedIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := slices.Collect(maps.Values(issues))
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}

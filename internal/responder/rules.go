package responder

// Topic is the key of a canned snippet.
type Topic string

const (
	TopicReact      Topic = "react"
	TopicAngular    Topic = "angular"
	TopicVue        Topic = "vue"
	TopicDjango     Topic = "django"
	TopicFlask      Topic = "flask"
	TopicSpringBoot Topic = "spring_boot"
	TopicDotNet     Topic = "dotnet"
	TopicNode       Topic = "node"
	TopicExpress    Topic = "express"
	TopicSwiftUI    Topic = "swiftui"
	TopicSwift      Topic = "swift"
	TopicKotlin     Topic = "kotlin"
	TopicPython     Topic = "python"
	TopicJavaScript Topic = "javascript"
	TopicTypeScript Topic = "typescript"
	TopicJava       Topic = "java"
	TopicCpp        Topic = "cpp"
	TopicCSharp     Topic = "csharp"
	TopicGo         Topic = "go"
	TopicRust       Topic = "rust"
	TopicPHP        Topic = "php"
	TopicRuby       Topic = "ruby"
	TopicSQL        Topic = "sql"
	TopicHTML       Topic = "html"
	TopicCSS        Topic = "css"
	TopicIOS        Topic = "ios"
)

type topicRule struct {
	topic    Topic
	keywords []string
}

var (
	greetingKeywords = []string{"hi", "hello", "hey", "howdy"}
	helpKeywords     = []string{"help", "what can you do", "commands"}
	brandKeywords    = []string{"cursor", "offline", "brain"}
)

// topicRules is evaluated top to bottom. Frameworks come before the
// languages they overlap with: "spring" before "java", "swiftui" before
// "swift". "javascript" must also precede "java", which it contains.
var topicRules = []topicRule{
	{TopicReact, []string{"react", "reactjs", "react js"}},
	{TopicAngular, []string{"angular"}},
	{TopicVue, []string{"vue", "vue.js", "vuejs"}},
	{TopicDjango, []string{"django"}},
	{TopicFlask, []string{"flask"}},
	{TopicSpringBoot, []string{"spring", "spring boot"}},
	{TopicDotNet, []string{".net", "asp.net", "dotnet"}},
	{TopicNode, []string{"node", "node.js", "nodejs"}},
	{TopicExpress, []string{"express"}},
	{TopicSwiftUI, []string{"swiftui", "swift ui"}},
	{TopicSwift, []string{"swift"}},
	{TopicKotlin, []string{"kotlin"}},
	{TopicPython, []string{"python"}},
	{TopicJavaScript, []string{"javascript", "js "}},
	{TopicTypeScript, []string{"typescript", "ts "}},
	{TopicJava, []string{"java"}},
	{TopicCpp, []string{"c++", "cpp"}},
	{TopicCSharp, []string{"c#", "csharp"}},
	{TopicGo, []string{"go", "golang"}},
	{TopicRust, []string{"rust"}},
	{TopicPHP, []string{"php"}},
	{TopicRuby, []string{"ruby"}},
	{TopicSQL, []string{"sql"}},
	{TopicHTML, []string{"html"}},
	{TopicCSS, []string{"css"}},
	{TopicIOS, []string{"ios", "xcode"}},
}

// Topics returns the topics in evaluation order.
func Topics() []Topic {
	out := make([]Topic, len(topicRules))
	for i, r := range topicRules {
		out[i] = r.topic
	}
	return out
}

// Keywords returns a copy of the trigger keywords for topic.
func Keywords(topic Topic) []string {
	for _, r := range topicRules {
		if r.topic == topic {
			return append([]string(nil), r.keywords...)
		}
	}
	return nil
}

// Snippet looks up the canned text for topic.
func Snippet(topic Topic) (string, bool) {
	s, ok := snippets[topic]
	return s, ok
}

package responder

import "strings"

const (
	EmptyPrompt   = "Hi. Ask me anything — I run fully offline on your device."
	GreetingReply = "Hello! I'm Brainbox — your offline AI. I work without the internet. Ask for code (Java, Python, React, etc.) or tips!"
	BrandReply    = "Brainbox is your offline AI: chat and get answers without the internet. All processing happens on your device."
	FallbackReply = `Got it. I'm running fully offline. Try: "Java code", "Python example", "React component", "SwiftUI tip", or name any language/framework.`
)

// HelpText lists what the responder can route.
var HelpText = strings.Join([]string{
	"I work **offline** on this device. You can:",
	"• Get code examples: Java, Python, JavaScript, Kotlin, C++, C#, Go, Swift, PHP, Ruby",
	"• Get framework tips: React, Angular, Vue, Django, Flask, Spring Boot, .NET, Node",
	"• Get iOS/Swift/SwiftUI/Xcode tips",
	"• Ask about concepts (OOP, async, APIs)",
	"",
	"I don't use the network — everything stays on your phone.",
}, "\n")

const fence = "```"

// snippet renders header, a fenced example and an optional trailing line.
func snippet(header, lang string, code []string, footer string) string {
	parts := []string{header, "", fence + lang}
	parts = append(parts, code...)
	parts = append(parts, fence)
	if footer != "" {
		parts = append(parts, footer)
	}
	return strings.Join(parts, "\n")
}

var snippets = map[Topic]string{
	TopicJava: snippet("Simple Java program:", "java", []string{
		"public class HelloWorld {",
		"    public static void main(String[] args) {",
		`        System.out.println("Hello, World!");`,
		"    }",
		"}",
	}, "Save as HelloWorld.java → javac HelloWorld.java → java HelloWorld"),

	TopicPython: snippet("Simple Python program:", "python", []string{
		"def main():",
		`    print("Hello, World!")`,
		"",
		`if __name__ == "__main__":`,
		"    main()",
	}, "Run: python hello.py"),

	TopicJavaScript: snippet("Simple JavaScript (browser or Node):", "javascript", []string{
		`console.log("Hello, World!");`,
		"",
		"function greet(name) {",
		"    return `Hello, ${name}!`;",
		"}",
	}, "Node: save as app.js → node app.js"),

	TopicTypeScript: snippet("Simple TypeScript:", "typescript", []string{
		"function greet(name: string): string {",
		"    return `Hello, ${name}!`;",
		"}",
		`console.log(greet("World"));`,
	}, "Compile: tsc app.ts → node app.js (or use ts-node)"),

	TopicKotlin: snippet("Simple Kotlin program:", "kotlin", []string{
		"fun main() {",
		`    println("Hello, World!")`,
		"}",
	}, "Run with Kotlin CLI or use in Android Studio."),

	TopicSwift: snippet("Simple Swift program:", "swift", []string{
		"import Foundation",
		`print("Hello, World!")`,
	}, "Run: swift hello.swift"),

	TopicSwiftUI: snippet("SwiftUI tip + minimal view:", "swift", []string{
		"import SwiftUI",
		"struct ContentView: View {",
		"    var body: some View {",
		"        VStack {",
		`            Text("Hello, World!")`,
		"        }",
		"    }",
		"}",
	}, "Use @State for state, @Binding to pass state to children."),

	TopicCpp: snippet("Simple C++ program:", "cpp", []string{
		"#include <iostream>",
		"int main() {",
		`    std::cout << "Hello, World!" << std::endl;`,
		"    return 0;",
		"}",
	}, "Compile: g++ -o hello hello.cpp → ./hello"),

	TopicCSharp: snippet("Simple C# program:", "csharp", []string{
		"using System;",
		"class Program {",
		"    static void Main() {",
		`        Console.WriteLine("Hello, World!");`,
		"    }",
		"}",
	}, "Run with: dotnet run (in a .NET project)"),

	TopicGo: snippet("Simple Go program:", "go", []string{
		"package main",
		`import "fmt"`,
		"func main() {",
		`    fmt.Println("Hello, World!")`,
		"}",
	}, "Run: go run main.go"),

	TopicRust: snippet("Simple Rust program:", "rust", []string{
		"fn main() {",
		`    println!("Hello, World!");`,
		"}",
	}, "Run: rustc main.rs → ./main  or  cargo run"),

	TopicPHP: snippet("Simple PHP script:", "php", []string{
		"<?php",
		`echo "Hello, World!\n";`,
		"?>",
	}, "Run: php hello.php"),

	TopicRuby: snippet("Simple Ruby script:", "ruby", []string{
		`puts "Hello, World!"`,
	}, "Run: ruby hello.rb"),

	TopicSQL: snippet("Basic SQL examples:", "sql", []string{
		"SELECT * FROM users WHERE id = 1;",
		"INSERT INTO users (name) VALUES ('Alice');",
		"UPDATE users SET name = 'Bob' WHERE id = 1;",
	}, ""),

	TopicHTML: snippet("Minimal HTML page:", "html", []string{
		"<!DOCTYPE html>",
		"<html>",
		"<head><title>Hello</title></head>",
		"<body>",
		"  <h1>Hello, World!</h1>",
		"</body>",
		"</html>",
	}, ""),

	TopicCSS: snippet("Basic CSS:", "css", []string{
		"body { font-family: sans-serif; }",
		".box { padding: 1rem; border: 1px solid #ccc; }",
		"#main { max-width: 800px; margin: 0 auto; }",
	}, ""),

	TopicReact: snippet("Simple React component:", "jsx", []string{
		"function App() {",
		"    return (",
		"        <div>",
		"            <h1>Hello, World!</h1>",
		"        </div>",
		"    );",
		"}",
		"export default App;",
	}, "Use useState for state, useEffect for side effects."),

	TopicAngular: snippet("Angular tip: component + template.", "typescript", []string{
		"@Component({",
		"    selector: 'app-hello',",
		"    template: '<h1>Hello, {{ name }}!</h1>'",
		"})",
		"export class HelloComponent {",
		"    name = 'World';",
		"}",
	}, ""),

	TopicVue: snippet("Simple Vue 3 component:", "vue", []string{
		"<script setup>",
		"import { ref } from 'vue'",
		"const msg = ref('Hello, World!')",
		"</script>",
		"<template>",
		"  <h1>{{ msg }}</h1>",
		"</template>",
	}, ""),

	TopicDjango: snippet("Minimal Django view:", "python", []string{
		"from django.http import HttpResponse",
		"def hello(request):",
		`    return HttpResponse("Hello, World!")`,
	}, "Add URL in urls.py: path('hello/', views.hello)."),

	TopicFlask: snippet("Minimal Flask app:", "python", []string{
		"from flask import Flask",
		"app = Flask(__name__)",
		"@app.route('/')",
		"def hello():",
		"    return 'Hello, World!'",
	}, "Run: flask run"),

	TopicSpringBoot: snippet("Simple Spring Boot REST endpoint:", "java", []string{
		"@RestController",
		"public class HelloController {",
		`    @GetMapping("/hello")`,
		"    public String hello() {",
		`        return "Hello, World!";`,
		"    }",
		"}",
	}, ""),

	TopicDotNet: snippet("Minimal ASP.NET Core endpoint:", "csharp", []string{
		"var builder = WebApplication.CreateBuilder(args);",
		"var app = builder.Build();",
		`app.MapGet("/", () => "Hello, World!");`,
		"app.Run();",
	}, ""),

	TopicNode: snippet("Minimal Node.js server:", "javascript", []string{
		"const http = require('http');",
		"const server = http.createServer((req, res) => {",
		"    res.writeHead(200);",
		"    res.end('Hello, World!');",
		"});",
		"server.listen(3000);",
	}, ""),

	TopicExpress: snippet("Minimal Express.js app:", "javascript", []string{
		"const express = require('express');",
		"const app = express();",
		"app.get('/', (req, res) => res.send('Hello, World!'));",
		"app.listen(3000);",
	}, ""),

	TopicIOS: "iOS/Swift tip: For offline apps use UserDefaults or SwiftData. Use async/await for async work. Xcode: Cmd+B build, Cmd+R run. SwiftUI: @State, @Binding, VStack/HStack.",
}

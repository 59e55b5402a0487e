package prompts

import "github.com/sahilchouksey/quiz-brain/model"

const bengaliMCQFormat = `শুধুমাত্র JSON ফরম্যাটে উত্তর দিন। JSON এর আগে বা পরে কোনো লেখা দেবেন না:
{
  "questions": [
    {
      "question": "প্রশ্নের টেক্সট এখানে?",
      "options": [
        {"key": "ক", "text": "অপশন ১"},
        {"key": "খ", "text": "অপশন ২"},
        {"key": "গ", "text": "অপশন ৩"},
        {"key": "ঘ", "text": "অপশন ৪"}
      ],
      "answer": "অপশন ১",
      "correct_option": "ক",
      "difficulty": "মাঝারি",
      "type": "MULTIPLECHOICE"
    }
  ]
}`

const bengaliShortFormat = `শুধুমাত্র JSON ফরম্যাটে উত্তর দিন। JSON এর আগে বা পরে কোনো লেখা দেবেন না:
{
  "questions": [
    {
      "question": "প্রশ্নের টেক্সট এখানে?",
      "answer": "উত্তরের টেক্সট এখানে।",
      "difficulty": "মাঝারি",
      "type": "SHORT"
    }
  ]
}`

var bengaliTemplates = []entry{
	{
		key: Key{model.LanguageBengali, model.DocumentTypeContext, model.QuestionTypeMultipleChoice, CountAuto},
		text: `নিচের প্রসঙ্গ নথির উপর ভিত্তি করে উপযুক্ত সংখ্যক বহুনির্বাচনী প্রশ্ন তৈরি করুন, প্রতিটিতে {{.AnswerOptions}}টি অপশন থাকবে।

প্রসঙ্গ নথি:
{{.Text}}

প্রয়োজনীয়তা:
1. বিষয়বস্তুর দৈর্ঘ্য অনুযায়ী প্রশ্ন তৈরি করুন (এই টেক্সটের জন্য সাধারণত {{.Count}}টি)
2. প্রতিটি প্রশ্নে {{.AnswerOptions}}টি অপশন থাকবে ({{.LabelList}})
3. সঠিক উত্তর স্পষ্টভাবে নির্দেশ করুন
4. নথির বিভিন্ন দিক এবং মূল ধারণাগুলো অন্তর্ভুক্ত করুন
5. বিভিন্ন অসুবিধার স্তরের প্রশ্ন অন্তর্ভুক্ত করুন (সহজ, মাঝারি, কঠিন)
6. সব প্রশ্ন ও উত্তর বাংলায় লিখুন

` + bengaliMCQFormat + `

প্রশ্নগুলো তৈরি করুন:`,
	},
	{
		key: Key{model.LanguageBengali, model.DocumentTypeContext, model.QuestionTypeMultipleChoice, CountSpecific},
		text: `নিচের প্রসঙ্গ নথির উপর ভিত্তি করে ঠিক {{.Count}}টি বহুনির্বাচনী প্রশ্ন তৈরি করুন, প্রতিটিতে {{.AnswerOptions}}টি অপশন থাকবে।

প্রসঙ্গ নথি:
{{.Text}}

প্রয়োজনীয়তা:
1. ঠিক {{.Count}}টি প্রশ্ন তৈরি করুন - কম বা বেশি নয়
2. প্রতিটি প্রশ্নে {{.AnswerOptions}}টি অপশন থাকবে ({{.LabelList}})
3. সঠিক উত্তর স্পষ্টভাবে নির্দেশ করুন
4. খুব সহজ বা খুব কঠিন প্রশ্ন এড়িয়ে চলুন
5. বিষয়বস্তু সীমিত হলে সবচেয়ে গুরুত্বপূর্ণ ধারণাগুলোর উপর ফোকাস করুন
6. সব প্রশ্ন ও উত্তর বাংলায় লিখুন

` + bengaliMCQFormat + `

ঠিক {{.Count}}টি প্রশ্ন তৈরি করুন:`,
	},
	{
		key: Key{model.LanguageBengali, model.DocumentTypeContext, model.QuestionTypeShort, CountAuto},
		text: `নিচের প্রসঙ্গ নথির উপর ভিত্তি করে উপযুক্ত সংখ্যক সংক্ষিপ্ত প্রশ্ন তৈরি করুন।

প্রসঙ্গ নথি:
{{.Text}}

প্রয়োজনীয়তা:
1. বিষয়বস্তুর দৈর্ঘ্য অনুযায়ী প্রশ্ন তৈরি করুন (এই টেক্সটের জন্য সাধারণত {{.Count}}টি)
2. প্রতিটি উত্তর সংক্ষিপ্ত হবে (১-৩ বাক্য)
3. মূল তথ্য, ধারণা ও প্রক্রিয়ার উপর ফোকাস করুন
4. সব প্রশ্ন ও উত্তর বাংলায় লিখুন

` + bengaliShortFormat + `

প্রশ্নগুলো তৈরি করুন:`,
	},
	{
		key: Key{model.LanguageBengali, model.DocumentTypeContext, model.QuestionTypeShort, CountSpecific},
		text: `নিচের প্রসঙ্গ নথির উপর ভিত্তি করে ঠিক {{.Count}}টি সংক্ষিপ্ত প্রশ্ন তৈরি করুন।

প্রসঙ্গ নথি:
{{.Text}}

প্রয়োজনীয়তা:
1. ঠিক {{.Count}}টি প্রশ্ন তৈরি করুন - কম বা বেশি নয়
2. প্রতিটি উত্তর সংক্ষিপ্ত হবে (১-৩ বাক্য)
3. মূল তথ্য, ধারণা ও প্রক্রিয়ার উপর ফোকাস করুন
4. সব প্রশ্ন ও উত্তর বাংলায় লিখুন

` + bengaliShortFormat + `

ঠিক {{.Count}}টি প্রশ্ন তৈরি করুন:`,
	},
	{
		key: Key{model.LanguageBengali, model.DocumentTypeQuestionPaper, model.QuestionTypeMultipleChoice, CountAuto},
		text: `নিচে একটি পরীক্ষার প্রশ্নপত্র দেওয়া হলো। প্রশ্নপত্রের ধরন, ক্রম ও কাঠিন্য বজায় রেখে প্রশ্নগুলো বহুনির্বাচনী আকারে লিখুন, প্রতিটিতে {{.AnswerOptions}}টি অপশন থাকবে।

প্রশ্নপত্র:
{{.Text}}

প্রয়োজনীয়তা:
1. প্রশ্নপত্রে যতগুলো প্রশ্ন আছে ততগুলো তৈরি করুন (সাধারণত {{.Count}}টি)
2. প্রতিটি প্রশ্নে {{.AnswerOptions}}টি অপশন থাকবে ({{.LabelList}}); প্রশ্নপত্রের নিজস্ব অপশন থাকলে সেগুলোই রাখুন
3. সঠিক উত্তর নির্দেশ করুন
4. প্রশ্নপত্রের বাইরের বিষয় যোগ করবেন না
5. সব প্রশ্ন ও উত্তর বাংলায় লিখুন

` + bengaliMCQFormat + `

প্রশ্নগুলো তৈরি করুন:`,
	},
	{
		key: Key{model.LanguageBengali, model.DocumentTypeQuestionPaper, model.QuestionTypeShort, CountAuto},
		text: `নিচে একটি পরীক্ষার প্রশ্নপত্র দেওয়া হলো। প্রশ্নগুলো সংক্ষিপ্ত প্রশ্ন আকারে লিখুন এবং প্রতিটির সংক্ষিপ্ত উত্তর দিন।

প্রশ্নপত্র:
{{.Text}}

প্রয়োজনীয়তা:
1. প্রশ্নপত্রে যতগুলো প্রশ্ন আছে ততগুলো তৈরি করুন (সাধারণত {{.Count}}টি)
2. প্রশ্নপত্রের ভাষা ও ক্রম বজায় রাখুন; [৫ নম্বর] ধরনের নম্বর-চিহ্ন বাদ দিন
3. প্রতিটি উত্তর ১-৩ বাক্যের হবে

` + bengaliShortFormat + `

প্রশ্নগুলো তৈরি করুন:`,
	},
}

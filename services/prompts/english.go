package prompts

import "github.com/sahilchouksey/quiz-brain/model"

const englishMCQFormat = `Format your response as JSON only. No markdown, no text before or after the JSON:
{
  "questions": [
    {
      "question": "Question text here?",
      "options": [
        {"key": "A", "text": "Option 1"},
        {"key": "B", "text": "Option 2"},
        {"key": "C", "text": "Option 3"},
        {"key": "D", "text": "Option 4"}
      ],
      "answer": "Option 1",
      "correct_option": "A",
      "difficulty": "medium",
      "type": "MULTIPLECHOICE"
    }
  ]
}`

const englishShortFormat = `Format your response as JSON only. No markdown, no text before or after the JSON:
{
  "questions": [
    {
      "question": "Question text here?",
      "answer": "Answer text here.",
      "difficulty": "medium",
      "type": "SHORT"
    }
  ]
}`

var englishTemplates = []entry{
	{
		key: Key{model.LanguageEnglish, model.DocumentTypeContext, model.QuestionTypeMultipleChoice, CountAuto},
		text: `Based on the following context document, generate an optimal number of multiple choice questions with {{.AnswerOptions}} options each. Choose the number from the length and complexity of the content.

Context Document:
{{.Text}}

Requirements:
1. Generate the optimal number of questions for this content (typically {{.Count}} questions for this text)
2. Each question should have {{.AnswerOptions}} options ({{.LabelList}})
3. Clearly indicate the correct answer
4. Questions should test comprehensive understanding of the content
5. Cover different aspects and key concepts from the document
6. Avoid questions that are too obvious or too obscure
7. Include questions of varying difficulty levels (easy, medium, hard)

` + englishMCQFormat + `

Generate the questions now:`,
	},
	{
		key: Key{model.LanguageEnglish, model.DocumentTypeContext, model.QuestionTypeMultipleChoice, CountSpecific},
		text: `Based on the following context document, generate exactly {{.Count}} multiple choice questions with {{.AnswerOptions}} options each.

Context Document:
{{.Text}}

Requirements:
1. Generate exactly {{.Count}} questions - no more, no less
2. Each question should have {{.AnswerOptions}} options ({{.LabelList}})
3. Clearly indicate the correct answer
4. Questions should test comprehensive understanding of the content
5. Cover different aspects and key concepts from the document
6. Avoid questions that are too obvious or too obscure
7. If the content is limited, focus on the most important concepts

` + englishMCQFormat + `

Generate exactly {{.Count}} questions now:`,
	},
	{
		key: Key{model.LanguageEnglish, model.DocumentTypeContext, model.QuestionTypeShort, CountAuto},
		text: `Based on the following context document, generate an optimal number of short answer questions. Choose the number from the length and complexity of the content.

Context Document:
{{.Text}}

Requirements:
1. Generate the optimal number of questions for this content (typically {{.Count}} questions for this text)
2. Each question should have a concise answer (1-3 sentences)
3. Focus on key facts, concepts, processes and relationships
4. Answers should be specific and factual
5. Include questions of varying difficulty levels (easy, medium, hard)

` + englishShortFormat + `

Generate the questions now:`,
	},
	{
		key: Key{model.LanguageEnglish, model.DocumentTypeContext, model.QuestionTypeShort, CountSpecific},
		text: `Based on the following context document, generate exactly {{.Count}} short answer questions.

Context Document:
{{.Text}}

Requirements:
1. Generate exactly {{.Count}} questions - no more, no less
2. Each question should have a concise answer (1-3 sentences)
3. Focus on key facts, concepts, processes and relationships
4. Answers should be specific and factual
5. If the content is limited, focus on the most important concepts

` + englishShortFormat + `

Generate exactly {{.Count}} questions now:`,
	},
	{
		key: Key{model.LanguageEnglish, model.DocumentTypeQuestionPaper, model.QuestionTypeMultipleChoice, CountAuto},
		text: `The following is an examination question paper. Reproduce its questions as multiple choice questions with {{.AnswerOptions}} options each, following the style, numbering and difficulty of the original paper.

Question Paper:
{{.Text}}

Requirements:
1. Produce as many questions as the paper contains (typically {{.Count}} questions)
2. Each question should have {{.AnswerOptions}} options ({{.LabelList}}); keep the paper's own options when it has them
3. Keep the subject matter and difficulty of the original
4. Indicate the correct answer; if it cannot be determined, choose the most defensible option
5. Do not invent topics the paper does not cover

` + englishMCQFormat + `

Generate the questions now:`,
	},
	{
		key: Key{model.LanguageEnglish, model.DocumentTypeQuestionPaper, model.QuestionTypeMultipleChoice, CountSpecific},
		text: `The following is an examination question paper. Write exactly {{.Count}} multiple choice questions with {{.AnswerOptions}} options each in the style of this paper.

Question Paper:
{{.Text}}

Requirements:
1. Generate exactly {{.Count}} questions - no more, no less
2. Each question should have {{.AnswerOptions}} options ({{.LabelList}})
3. Keep the subject matter, style and difficulty of the original
4. Prefer the paper's own questions; write new ones on the same topics only when needed
5. Clearly indicate the correct answer

` + englishMCQFormat + `

Generate exactly {{.Count}} questions now:`,
	},
	{
		key: Key{model.LanguageEnglish, model.DocumentTypeQuestionPaper, model.QuestionTypeShort, CountAuto},
		text: `The following is an examination question paper. Reproduce its questions as short answer questions and answer each one concisely.

Question Paper:
{{.Text}}

Requirements:
1. Produce as many questions as the paper contains (typically {{.Count}} questions)
2. Keep the paper's wording and order; drop marks annotations such as [5 marks]
3. Each answer should be 1-3 factual sentences

` + englishShortFormat + `

Generate the questions now:`,
	},
	{
		key: Key{model.LanguageEnglish, model.DocumentTypeQuestionPaper, model.QuestionTypeShort, CountSpecific},
		text: `The following is an examination question paper. Write exactly {{.Count}} short answer questions in the style of this paper and answer each one concisely.

Question Paper:
{{.Text}}

Requirements:
1. Generate exactly {{.Count}} questions - no more, no less
2. Prefer the paper's own questions; write new ones on the same topics only when needed
3. Each answer should be 1-3 factual sentences

` + englishShortFormat + `

Generate exactly {{.Count}} questions now:`,
	},
}

var genericTemplates = []entry{
	{
		key: genericKey(model.LanguageEnglish, model.QuestionTypeMultipleChoice),
		text: `Based on the following text, generate {{.Count}} multiple choice questions with {{.AnswerOptions}} options ({{.LabelList}}).

Text:
{{.Text}}

` + englishMCQFormat,
	},
	{
		key: genericKey(model.LanguageEnglish, model.QuestionTypeShort),
		text: `Based on the following text, generate {{.Count}} short answer questions.

Text:
{{.Text}}

` + englishShortFormat,
	},
	{
		key: genericKey(model.LanguageBengali, model.QuestionTypeMultipleChoice),
		text: `নিচের টেক্সটের উপর ভিত্তি করে {{.Count}}টি বহুনির্বাচনী প্রশ্ন তৈরি করুন, প্রতিটিতে {{.AnswerOptions}}টি অপশন থাকবে ({{.LabelList}})।

টেক্সট:
{{.Text}}

` + bengaliMCQFormat,
	},
	{
		key: genericKey(model.LanguageBengali, model.QuestionTypeShort),
		text: `নিচের টেক্সটের উপর ভিত্তি করে {{.Count}}টি সংক্ষিপ্ত প্রশ্ন তৈরি করুন।

টেক্সট:
{{.Text}}

` + bengaliShortFormat,
	},
}
